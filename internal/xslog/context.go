// Package xslog carries a slog logger through context and provides the
// attribute vocabulary used across the service.
package xslog

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithLogger stores the request-scoped logger in ctx. Handlers retrieve
// it with FromContext so per-request attrs follow the request down the
// call tree.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored by WithLogger, or the process
// default when the context carries none.
func FromContext(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(ctxKey{}).(*slog.Logger)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// WithAttrs derives a context whose logger always emits attrs.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	logger := FromContext(ctx)
	for _, attr := range attrs {
		logger = logger.With(attr)
	}
	return WithLogger(ctx, logger)
}
