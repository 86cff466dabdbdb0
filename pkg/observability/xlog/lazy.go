package xlog

import "log/slog"

// =============================================================================
// 延迟求值（Lazy Evaluation）
//
// 日志参数计算开销较大时，Lazy 系列函数通过 slog.LogValuer 推迟计算：
// 创建属性时只保存函数引用，级别被禁用时函数永不执行。
// 简单字符串、数字或已计算好的值直接用 slog.String 等更高效。
// =============================================================================

// lazyValue 延迟求值的通用类型
type lazyValue struct {
	fn func() any
}

// LogValue 实现 slog.LogValuer 接口
func (l lazyValue) LogValue() slog.Value {
	return slog.AnyValue(l.fn())
}

// Lazy 返回延迟求值的属性
//
// Lazy 的核心价值是避免昂贵计算（fn 不被调用），而非避免分配开销。
//
// 示例 - 延迟序列化：
//
//	logger.Debug(ctx, "request",
//	    xlog.Lazy("body", func() any {
//	        return expensiveSerialize(req)
//	    }))
func Lazy(key string, fn func() any) slog.Attr {
	if fn == nil {
		return slog.Any(key, nil)
	}
	return slog.Any(key, lazyValue{fn: fn})
}

// lazyStringValue 延迟求值的字符串类型
type lazyStringValue struct {
	fn func() string
}

// LogValue 实现 slog.LogValuer 接口
func (l lazyStringValue) LogValue() slog.Value {
	return slog.StringValue(l.fn())
}

// LazyString 返回延迟求值的字符串属性
//
// 与 Lazy 类似，但专用于字符串类型，避免装箱开销。
func LazyString(key string, fn func() string) slog.Attr {
	if fn == nil {
		return slog.String(key, "")
	}
	return slog.Any(key, lazyStringValue{fn: fn})
}

// lazyErrorValue 延迟求值的错误类型
type lazyErrorValue struct {
	fn func() error
}

// LogValue 实现 slog.LogValuer 接口
func (l lazyErrorValue) LogValue() slog.Value {
	err := l.fn()
	if err == nil {
		return slog.Value{} // nil error 返回空值
	}
	return slog.StringValue(err.Error())
}

// LazyError 返回延迟求值的错误属性
//
// 当 fn 返回 nil 时，输出空值（JSON 中为 null）；若需完全省略字段，
// 应在日志调用前显式判断 error != nil。
func LazyError(key string, fn func() error) slog.Attr {
	if fn == nil {
		return slog.Any(key, nil)
	}
	return slog.Any(key, lazyErrorValue{fn: fn})
}

// LazyErr 返回使用标准 key "error" 的延迟错误属性
//
// 这是 LazyError(KeyError, fn) 的便捷版本。
func LazyErr(fn func() error) slog.Attr {
	return LazyError(KeyError, fn)
}
