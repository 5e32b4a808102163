package job

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/Semior001/xdigest/app/store"
	"github.com/Semior001/xdigest/pkg/logx"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// ErrPanic is returned by Recover middleware when the handler panicked.
var ErrPanic = fmt.Errorf("render panicked")

type renderIDKey struct{}

// RenderIDFromContext returns the render id set by RenderID middleware.
func RenderIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(renderIDKey{}).(string)
	return id, ok
}

// RenderID is a middleware that assigns an id to the render and
// attaches it to every log record made within its context.
func RenderID() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) (Result, error) {
			id := uuid.New().String()
			ctx = context.WithValue(ctx, renderIDKey{}, id)
			ctx = logx.ContextWithAttrs(ctx, slog.String("render_id", id))
			return next(ctx, req)
		}
	}
}

// Logger is a middleware that logs every render.
func Logger(lg *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) (Result, error) {
			lg.DebugCtx(ctx, "render started",
				slog.String("input", req.Input),
				slog.String("output", req.Output),
				slog.String("template", req.Template),
			)

			start := time.Now()
			res, err := next(ctx, req)
			if err != nil {
				lg.WarnCtx(ctx, "render failed",
					slog.String("input", req.Input),
					slog.Duration("elapsed", time.Since(start)),
					slog.Any("err", err),
				)
				return res, err
			}

			lg.InfoCtx(ctx, "render finished",
				slog.String("input", req.Input),
				slog.String("output", res.Output),
				slog.Int("sections", res.Sections),
				slog.Int("items", res.Items),
				slog.Duration("elapsed", time.Since(start)),
			)

			return res, nil
		}
	}
}

// Recover is a middleware that turns panics into errors.
func Recover(lg *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) (res Result, err error) {
			defer func() {
				if r := recover(); r != nil {
					lg.ErrorCtx(ctx, "panic recovered",
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)
					res, err = Result{}, fmt.Errorf("%w: %v", ErrPanic, r)
				}
			}()

			return next(ctx, req)
		}
	}
}

// Archive is a middleware that records successful renders in the store.
func Archive(s store.Interface, now func() time.Time) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) (Result, error) {
			res, err := next(ctx, req)
			if err != nil {
				return res, err
			}

			err = s.Put(ctx, store.Entry{
				ID:         res.Output,
				RenderID:   res.RenderID,
				Title:      res.Title,
				Date:       res.Date,
				Input:      res.Input,
				RenderedAt: now(),
				Sections:   res.Sections,
				Items:      res.Items,
			})
			if err != nil {
				return res, fmt.Errorf("archive %s: %w", res.Output, err)
			}

			return res, nil
		}
	}
}
