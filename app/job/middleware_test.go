package job

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Semior001/xdigest/app/store"
	"github.com/Semior001/xdigest/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestChain(t *testing.T) {
	var calls []string
	mw := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, req Request) (Result, error) {
				calls = append(calls, name)
				return next(ctx, req)
			}
		}
	}

	h := Chain(func(context.Context, Request) (Result, error) {
		calls = append(calls, "handler")
		return Result{}, nil
	}, mw("outer"), mw("inner"))

	_, err := h(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "handler"}, calls)
}

func TestRenderID(t *testing.T) {
	buf := &bytes.Buffer{}
	lg := slog.New(&logx.Chain{
		Middleware: []logx.Middleware{logx.ContextAttrs},
		Handler:    slog.HandlerOptions{}.NewTextHandler(buf),
	})

	var ids []string
	h := RenderID()(func(ctx context.Context, _ Request) (Result, error) {
		id, ok := RenderIDFromContext(ctx)
		require.True(t, ok)
		ids = append(ids, id)
		lg.InfoCtx(ctx, "inside")
		return Result{}, nil
	})

	for i := 0; i < 2; i++ {
		_, err := h(context.Background(), Request{})
		require.NoError(t, err)
	}

	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
	assert.Contains(t, buf.String(), "render_id="+ids[0])
	assert.Contains(t, buf.String(), "render_id="+ids[1])

	_, ok := RenderIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestRecover(t *testing.T) {
	h := Recover(slog.Default())(func(context.Context, Request) (Result, error) {
		panic("boom")
	})

	_, err := h(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrPanic)
	assert.ErrorContains(t, err, "boom")
}

func TestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	lg := slog.New(slog.HandlerOptions{}.NewTextHandler(buf))

	h := Logger(lg)(func(_ context.Context, req Request) (Result, error) {
		if req.Input == "bad.json" {
			return Result{}, errors.New("bad digest")
		}
		return Result{Output: "/out/index.html", Sections: 2, Items: 5}, nil
	})

	_, err := h(context.Background(), Request{Input: "good.json"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `msg="render finished" input=good.json output=/out/index.html sections=2 items=5`)

	_, err = h(context.Background(), Request{Input: "bad.json"})
	require.Error(t, err)
	assert.Contains(t, buf.String(), `msg="render failed" input=bad.json`)
	assert.Contains(t, buf.String(), `err="bad digest"`)
}

func TestArchive(t *testing.T) {
	now := time.Date(2026, 2, 6, 10, 0, 0, 0, time.UTC)
	s := &store.InterfaceMock{PutFunc: func(ctx context.Context, e store.Entry) error {
		if e.ID == "/out/fail.html" {
			return errors.New("disk full")
		}
		return nil
	}}

	h := Archive(s, func() time.Time { return now })(func(_ context.Context, req Request) (Result, error) {
		if req.Input == "bad.json" {
			return Result{}, errors.New("bad digest")
		}
		return Result{
			RenderID: "id",
			Input:    req.Input,
			Output:   req.Output,
			Title:    "X Feed Digest",
			Date:     "Friday",
			Sections: 1,
			Items:    2,
		}, nil
	})

	_, err := h(context.Background(), Request{Input: "/in/good.json", Output: "/out/index.html"})
	require.NoError(t, err)

	require.Len(t, s.PutCalls(), 1)
	assert.Equal(t, store.Entry{
		ID:         "/out/index.html",
		RenderID:   "id",
		Title:      "X Feed Digest",
		Date:       "Friday",
		Input:      "/in/good.json",
		RenderedAt: now,
		Sections:   1,
		Items:      2,
	}, s.PutCalls()[0].E)

	_, err = h(context.Background(), Request{Input: "bad.json"})
	require.Error(t, err)
	assert.Len(t, s.PutCalls(), 1, "failed renders are not archived")

	_, err = h(context.Background(), Request{Input: "/in/good.json", Output: "/out/fail.html"})
	assert.ErrorContains(t, err, "disk full")
}
