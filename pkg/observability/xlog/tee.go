// tee.go 多目标分发 handler
//
// 同一条记录分发给多个输出目标（典型场景：console + file），
// 各目标持有独立的级别控制，互不影响。
package xlog

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler 把记录分发给全部子 handler
type teeHandler struct {
	handlers []slog.Handler
}

// 编译时接口断言
var _ slog.Handler = (*teeHandler)(nil)

// newTeeHandler 组合多个 handler
//
// nil 子项被忽略。只剩一个子项时直接返回该子项，不引入分发层。
func newTeeHandler(handlers ...slog.Handler) slog.Handler {
	kept := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			kept = append(kept, h)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return &teeHandler{handlers: kept}
}

// Enabled 任一子 handler 启用即启用
func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle 分发记录给各子 handler
//
// 每个子项收到记录的独立 Clone，下游的修改不会互相污染。
// 单个子项失败不阻断其余子项，错误聚合后返回。
func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs 映射到全部子 handler
func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	children := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		children[i] = h.WithAttrs(attrs)
	}
	return &teeHandler{handlers: children}
}

// WithGroup 映射到全部子 handler
func (t *teeHandler) WithGroup(name string) slog.Handler {
	children := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		children[i] = h.WithGroup(name)
	}
	return &teeHandler{handlers: children}
}
