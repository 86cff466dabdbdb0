// otlp.go OTLP 风格 JSON 行格式化
//
// 每条记录输出一行 JSON，字段对齐 OpenTelemetry 日志数据模型：
// timestamp / severityText / severityNumber / body / traceId / spanId /
// resource / attributes。文件侧采集器按行消费，单行即单条记录。
package xlog

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/logkit/pkg/util/xjson"
)

// 信封字段占位值，记录不在任何 span 内时使用全零 ID
const (
	zeroTraceID = "00000000000000000000000000000000"
	zeroSpanID  = "0000000000000000"
)

// standardAttrNames 禁止出现在 attributes 顶层的字段名
//
// 包含全部保留属性名和信封字段名。表在包初始化时构建，之后只读，
// 单条记录的排除判断是一次 map 查找，不做任何运行时反射。
var standardAttrNames = func() map[string]struct{} {
	names := map[string]struct{}{
		"timestamp":      {},
		"severityText":   {},
		"severityNumber": {},
		"traceId":        {},
		"spanId":         {},
		"resource":       {},
		"attributes":     {},
	}
	for reserved := range reservedKeys {
		names[reserved] = struct{}{}
	}
	return names
}()

// OTLPHandlerOptions OTLP 格式化器配置
type OTLPHandlerOptions struct {
	// Level 最低输出级别，nil 时为 LevelInfo
	Level slog.Leveler

	// AddSource 是否输出调用位置（code.filepath / code.lineno / code.function）
	AddSource bool

	// ServiceName 服务名，写入 resource["service.name"]
	ServiceName string

	// Environment 部署环境，写入 resource["deployment.environment"]
	Environment string

	// ServiceVersion 服务版本，写入 resource["service.version"]
	ServiceVersion string

	// InstanceID 实例标识，空时自动生成 UUID
	InstanceID string
}

// OTLPHandler OTLP 风格 JSON 行 handler
//
// resource 块在创建时固定，进程生命周期内不变。
// 写入经互斥锁保护，单条记录序列化为完整的一行后一次性写出，
// 与轮转器的单次 Write 原子性配合，行永不被截断。
type OTLPHandler struct {
	level     slog.Leveler
	addSource bool
	resource  map[string]any

	attrs  []slog.Attr
	groups []string

	mu *sync.Mutex
	w  io.Writer
}

// 编译时接口断言
var _ slog.Handler = (*OTLPHandler)(nil)

// NewOTLPHandler 创建 OTLP 格式化器
func NewOTLPHandler(w io.Writer, opts *OTLPHandlerOptions) (*OTLPHandler, error) {
	if w == nil {
		return nil, ErrNilOutput
	}
	if opts == nil {
		opts = &OTLPHandlerOptions{}
	}
	level := opts.Level
	if level == nil {
		level = LevelInfo
	}
	instanceID := opts.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	return &OTLPHandler{
		level:     level,
		addSource: opts.AddSource,
		resource: map[string]any{
			"service.name":           opts.ServiceName,
			"deployment.environment": opts.Environment,
			"service.version":        opts.ServiceVersion,
			"service.instance.id":    instanceID,
		},
		mu: &sync.Mutex{},
		w:  w,
	}, nil
}

// Enabled 按配置级别过滤
func (h *OTLPHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle 序列化一条记录并写出一行 JSON
func (h *OTLPHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		appendAttr(attrs, a, len(h.groups) == 0)
	}
	target := attrs
	for _, g := range h.groups {
		child := make(map[string]any)
		target[g] = child
		target = child
	}
	top := len(h.groups) == 0
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(target, a, top)
		return true
	})
	if h.addSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		attrs["code.filepath"] = frame.File
		attrs["code.lineno"] = frame.Line
		attrs["code.function"] = frame.Function
	}

	traceID, spanID := zeroTraceID, zeroSpanID
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		traceID = sc.TraceID().String()
		if sc.HasSpanID() {
			spanID = sc.SpanID().String()
		}
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	entry := map[string]any{
		"timestamp":      ts.UTC().Format(time.RFC3339Nano),
		"severityText":   r.Level.String(),
		"severityNumber": severityNumber(r.Level),
		"body":           r.Message,
		"traceId":        traceID,
		"spanId":         spanID,
		"resource":       h.resource,
		"attributes":     attrs,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entry); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// WithAttrs 返回携带预置属性的新 handler
func (h *OTLPHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := h.clone()
	if len(h.groups) > 0 {
		// 当前处于分组内，属性包装进嵌套分组后追加
		wrapped := attrs
		for i := len(h.groups) - 1; i >= 0; i-- {
			wrapped = []slog.Attr{{Key: h.groups[i], Value: slog.GroupValue(wrapped...)}}
		}
		attrs = wrapped
	}
	h2.attrs = append(h2.attrs, attrs...)
	return h2
}

// WithGroup 返回进入指定分组的新 handler
func (h *OTLPHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.groups = append(h2.groups, name)
	return h2
}

func (h *OTLPHandler) clone() *OTLPHandler {
	h2 := *h
	h2.attrs = append([]slog.Attr(nil), h.attrs...)
	h2.groups = append([]string(nil), h.groups...)
	return &h2
}

// severityNumber slog 级别到 OTLP SeverityNumber 的映射
//
// DEBUG=5 INFO=9 WARN=13 ERROR=17，中间级别落入所属区间
func severityNumber(level slog.Level) int {
	switch {
	case level < slog.LevelInfo:
		return 5
	case level < slog.LevelWarn:
		return 9
	case level < slog.LevelError:
		return 13
	default:
		return 17
	}
}

// appendAttr 把属性写入目标映射
//
// top 为 true 时排除保留名与信封字段名，分组内部的键原样保留。
func appendAttr(m map[string]any, a slog.Attr, top bool) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if top {
		if _, excluded := standardAttrNames[a.Key]; excluded {
			return
		}
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if a.Key == "" {
			// 空 key 分组内联展开，遵循 slog 的属性语义
			for _, g := range group {
				appendAttr(m, g, top)
			}
			return
		}
		child := make(map[string]any, len(group))
		for _, g := range group {
			appendAttr(child, g, false)
		}
		m[a.Key] = child
		return
	}
	m[a.Key] = attrValue(a.Value)
}

// attrValue 把已 Resolve 的 slog.Value 转换为可序列化值
func attrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	default:
		// 任意类型先做可序列化兜底，避免单个不可序列化值拖垮整行
		return xjson.Safe(v.Any())
	}
}
