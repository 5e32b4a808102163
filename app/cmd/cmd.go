// Package cmd contains commands for the application.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Semior001/xdigest/app/job"
	"github.com/Semior001/xdigest/app/render"
	"github.com/Semior001/xdigest/app/store"
	"golang.org/x/exp/slog"
)

// maxTemplates is the number of parsed templates kept in memory.
const maxTemplates = 16

// ErrNoStore is returned by archive commands when the store path is not set.
var ErrNoStore = errors.New("store path is not set")

// CommonOpts contains options shared by all commands.
type CommonOpts struct {
	StorePath string
}

// SetCommon sets common options.
func (c *CommonOpts) SetCommon(opts CommonOpts) { *c = opts }

// pipeline builds the render handler chain. Renders are archived when the
// store path is set, the returned function releases the store.
func (c *CommonOpts) pipeline(lg *slog.Logger, rnd *render.Renderer) (h job.Handler, closeFn func(), err error) {
	mws := []job.Middleware{
		job.RenderID(),
		job.Logger(lg.With(slog.String("prefix", "job"))),
		job.Recover(lg.With(slog.String("prefix", "job"))),
	}
	closeFn = func() {}

	if c.StorePath != "" {
		s, err := c.openStore()
		if err != nil {
			return nil, nil, err
		}

		mws = append(mws, job.Archive(s, time.Now))
		closeFn = func() {
			if err := s.Close(); err != nil {
				lg.Error("close bolt store", slog.Any("err", err))
			}
		}
	}

	terminal := &job.Renderer{Renderer: rnd, Stdin: os.Stdin}
	return job.Chain(terminal.Handle, mws...), closeFn, nil
}

func (c *CommonOpts) openStore() (*store.Bolt, error) {
	if c.StorePath == "" {
		return nil, ErrNoStore
	}

	if err := os.MkdirAll(c.StorePath, 0o750); err != nil {
		return nil, fmt.Errorf("make store dir: %w", err)
	}

	s, err := store.NewBolt(c.StorePath)
	if err != nil {
		return nil, fmt.Errorf("make store: %w", err)
	}

	return s, nil
}
