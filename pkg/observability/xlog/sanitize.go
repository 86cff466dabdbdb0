// sanitize.go 保留属性名清洗
//
// 记录层的固定字段（消息体、时间戳、级别等）占用了一批属性名。
// 调用方在附加元数据里复用这些名字时，格式化层的固定字段会与之冲突，
// 轻则覆盖、重则序列化报错。清洗层在记录进入格式化层之前把冲突键
// 改写为 log_ 前缀的安全名，保证数据不丢、格式化不炸。
package xlog

import (
	"context"
	"log/slog"
	"sort"
)

// sanitizedPrefix 保留名改写前缀
const sanitizedPrefix = "log_"

// reservedKeys 保留属性名表，进程级只读
//
// 左列是记录层与格式化层占用的字段名，右列是改写后的安全名。
// 表在包初始化后不再变更，所有读取无需加锁。
var reservedKeys = map[string]string{
	"message":         sanitizedPrefix + "message",
	"asctime":         sanitizedPrefix + "asctime",
	"time":            sanitizedPrefix + "time",
	"level":           sanitizedPrefix + "level",
	"levelname":       sanitizedPrefix + "levelname",
	"msg":             sanitizedPrefix + "msg",
	"source":          sanitizedPrefix + "source",
	"filename":        sanitizedPrefix + "filename",
	"module":          sanitizedPrefix + "module",
	"lineno":          sanitizedPrefix + "lineno",
	"body":            sanitizedPrefix + "body",
	"severity_text":   sanitizedPrefix + "severity_text",
	"severity_number": sanitizedPrefix + "severity_number",
}

// IsReservedKey 判断属性名是否为保留名
func IsReservedKey(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// SanitizeExtra 清洗元数据映射中的保留属性名
//
// 输入为 nil、非映射类型或空映射时原样返回。
// 非空映射返回新映射，保留键改写为 log_ 前缀名，其余键原样拷贝。
// 调用方的映射永不被修改。
//
// 设计决策（改名胜出）: 映射中同时存在 "message" 和 "log_message" 时，
// 改写结果覆盖已有的 "log_message" 值。两条规则固定：改名后的值胜出，
// 结果确定且与映射遍历顺序无关。
func SanitizeExtra(v any) any {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return v
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		if !IsReservedKey(k) {
			out[k] = val
		}
	}
	// 保留键最后写入，保证与非保留键冲突时改名结果胜出
	for k, val := range m {
		if renamed, hit := reservedKeys[k]; hit {
			out[renamed] = val
		}
	}
	return out
}

// Extra 把调用方附带的元数据转换为日志属性
//
// 映射类型先经 [SanitizeExtra] 清洗再按键名排序展开，保证输出顺序稳定。
// 非映射类型包装为单个 extra 属性，由格式化层按值语义处理。
func Extra(v any) []slog.Attr {
	if v == nil {
		return nil
	}
	m, ok := SanitizeExtra(v).(map[string]any)
	if !ok {
		return []slog.Attr{slog.Any(KeyExtra, v)}
	}
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, m[k]))
	}
	return attrs
}

// SanitizeHandler 保留名清洗装饰器
//
// 包装底层 handler，把记录顶层属性中的保留键改写为安全名后下传。
// 只处理顶层属性，分组内部的键不受影响。
type SanitizeHandler struct {
	handler slog.Handler
}

// 编译时接口断言
var _ slog.Handler = (*SanitizeHandler)(nil)

// NewSanitizeHandler 创建清洗装饰器
func NewSanitizeHandler(handler slog.Handler) (*SanitizeHandler, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	return &SanitizeHandler{handler: handler}, nil
}

// Enabled 委托给底层 handler
func (h *SanitizeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle 改写记录顶层属性中的保留键
//
// 无保留键时记录原样下传，不产生拷贝。
func (h *SanitizeHandler) Handle(ctx context.Context, r slog.Record) error {
	dirty := false
	r.Attrs(func(a slog.Attr) bool {
		if IsReservedKey(a.Key) {
			dirty = true
			return false
		}
		return true
	})
	if !dirty {
		return h.handler.Handle(ctx, r)
	}

	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, clean)
}

// WithAttrs 预先清洗累积属性
func (h *SanitizeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = sanitizeAttr(a)
	}
	return &SanitizeHandler{handler: h.handler.WithAttrs(clean)}
}

// WithGroup 委托分组，分组内的键不再视为顶层保留名
func (h *SanitizeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.handler.WithGroup(name)
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	if renamed, hit := reservedKeys[a.Key]; hit {
		a.Key = renamed
	}
	return a
}
