// enrich.go 追踪信息注入装饰器
//
// 从 context 中的 OpenTelemetry SpanContext 提取 trace_id / span_id，
// 作为属性注入每条记录。记录不在 span 内时原样下传，零开销。
package xlog

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// EnrichHandler 追踪信息注入装饰器
type EnrichHandler struct {
	handler slog.Handler
}

// 编译时接口断言
var _ slog.Handler = (*EnrichHandler)(nil)

// NewEnrichHandler 创建追踪注入装饰器
func NewEnrichHandler(handler slog.Handler) (*EnrichHandler, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	return &EnrichHandler{handler: handler}, nil
}

// Enabled 委托给底层 handler
func (h *EnrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle 注入追踪属性
//
// 修改前先 Clone 记录，避免污染共享状态（slog.Record 文档要求）。
func (h *EnrichHandler) Handle(ctx context.Context, r slog.Record) error {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return h.handler.Handle(ctx, r)
	}
	enriched := r.Clone()
	enriched.AddAttrs(slog.String(KeyTraceID, sc.TraceID().String()))
	if sc.HasSpanID() {
		enriched.AddAttrs(slog.String(KeySpanID, sc.SpanID().String()))
	}
	return h.handler.Handle(ctx, enriched)
}

// WithAttrs 委托并保持装饰
func (h *EnrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EnrichHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup 委托并保持装饰
func (h *EnrichHandler) WithGroup(name string) slog.Handler {
	return &EnrichHandler{handler: h.handler.WithGroup(name)}
}
