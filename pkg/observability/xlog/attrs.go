// attrs.go 统一属性 key 命名规范和便捷构造函数
package xlog

import (
	"log/slog"
	"time"
)

// 通用属性 key
const (
	// KeyError 错误信息
	KeyError = "error"

	// KeyStack 堆栈信息
	KeyStack = "stack"

	// KeyExtra 非映射类型的附加元数据
	KeyExtra = "extra"

	// KeyTraceID 分布式追踪 ID
	KeyTraceID = "trace_id"

	// KeySpanID 追踪 Span ID
	KeySpanID = "span_id"

	// KeyDuration 耗时
	KeyDuration = "duration"

	// KeyComponent 组件名
	KeyComponent = "component"

	// KeyOperation 操作名
	KeyOperation = "operation"

	// KeyCount 数量
	KeyCount = "count"
)

// Err 创建错误属性，nil 安全
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "<nil>")
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Component 创建组件属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 创建操作属性
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Count 创建数量属性
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}
