// Package job runs digest renders through a chain of middlewares.
package job

import (
	"context"
	"time"
)

// Request describes a single render.
type Request struct {
	Input    string // path to the digest json, "-" for stdin
	Output   string // path to the html page
	Template string // empty for the embedded template
}

// Result describes a finished render.
type Result struct {
	RenderID string
	Input    string // absolute path, "-" for stdin
	Output   string // absolute path
	Title    string
	Date     string
	Sections int
	Items    int
	Elapsed  time.Duration
}

// Handler renders a digest.
type Handler func(ctx context.Context, req Request) (Result, error)

// Middleware wraps a handler.
type Middleware func(Handler) Handler

// Chain wraps h with middlewares, the first one is the outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
