// Package logx contains slog handler middleware.
package logx

import (
	"context"

	"golang.org/x/exp/slog"
)

// HandleFunc is a function that handles a record.
type HandleFunc func(context.Context, slog.Record) error

// Middleware is a middleware for logging handler.
type Middleware func(HandleFunc) HandleFunc

// Chain is a chain of middleware.
type Chain struct {
	Middleware []Middleware
	slog.Handler
}

// Handle runs the chain of middleware and the handler.
func (c *Chain) Handle(ctx context.Context, rec slog.Record) error {
	h := c.Handler.Handle
	for i := len(c.Middleware) - 1; i >= 0; i-- {
		h = c.Middleware[i](h)
	}
	return h(ctx, rec)
}

// WithGroup returns a new Chain with the given group.
func (c *Chain) WithGroup(group string) slog.Handler {
	return &Chain{
		Middleware: c.Middleware,
		Handler:    c.Handler.WithGroup(group),
	}
}

// WithAttrs returns a new Chain with the given attributes.
func (c *Chain) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Chain{
		Middleware: c.Middleware,
		Handler:    c.Handler.WithAttrs(attrs),
	}
}

type attrsKey struct{}

// ContextWithAttrs returns a new context carrying attrs in addition to the
// ones already stored in parent.
func ContextWithAttrs(parent context.Context, attrs ...slog.Attr) context.Context {
	prev := AttrsFromContext(parent)
	merged := make([]slog.Attr, 0, len(prev)+len(attrs))
	merged = append(merged, prev...)
	merged = append(merged, attrs...)
	return context.WithValue(parent, attrsKey{}, merged)
}

// AttrsFromContext returns attributes stored in the context.
func AttrsFromContext(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}

// ContextAttrs is a middleware that adds attributes from the context
// to every record.
func ContextAttrs(next HandleFunc) HandleFunc {
	return func(ctx context.Context, rec slog.Record) error {
		if attrs := AttrsFromContext(ctx); len(attrs) > 0 {
			rec.AddAttrs(attrs...)
		}
		return next(ctx, rec)
	}
}
