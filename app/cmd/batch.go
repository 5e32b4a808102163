package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Semior001/xdigest/app/job"
	"github.com/Semior001/xdigest/app/render"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// Batch is a command to render every digest in a directory.
type Batch struct {
	CommonOpts
	Dir      string `long:"dir" env:"DIR" required:"true" description:"directory with digest json files"`
	Out      string `long:"out" env:"OUT" required:"true" description:"directory for rendered pages"`
	Template string `short:"t" long:"template" env:"TEMPLATE" description:"template path, embedded template if empty"`
	Workers  int    `long:"workers" env:"WORKERS" default:"4" description:"number of concurrent renders"`
}

// Execute runs the command. Every digest is attempted, failures are
// reported together.
func (b *Batch) Execute(_ []string) error {
	lg := slog.Default()

	if b.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", b.Workers)
	}

	inputs, err := filepath.Glob(filepath.Join(b.Dir, "*.json"))
	if err != nil {
		return fmt.Errorf("list digests: %w", err)
	}

	if len(inputs) == 0 {
		return fmt.Errorf("no digests found in %s", b.Dir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rnd := render.NewRenderer(lg.With(slog.String("prefix", "render")), maxTemplates)

	h, closeFn, err := b.pipeline(lg, rnd)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer closeFn()

	errs := make([]error, len(inputs))

	ewg := &errgroup.Group{}
	ewg.SetLimit(b.Workers)
	for i, in := range inputs {
		i, in := i, in
		ewg.Go(func() error {
			name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".html"
			req := job.Request{Input: in, Output: filepath.Join(b.Out, name), Template: b.Template}
			if _, err := h(ctx, req); err != nil {
				errs[i] = fmt.Errorf("%s: %w", filepath.Base(in), err)
			}
			return nil
		})
	}
	_ = ewg.Wait()

	stat := rnd.CacheStat()
	failed := len(lo.Filter(errs, func(err error, _ int) bool { return err != nil }))
	lg.Info("batch finished",
		slog.Int("total", len(inputs)),
		slog.Int("failed", failed),
		slog.Int("template_cache_hits", stat.Hits),
		slog.Int("template_cache_misses", stat.Misses),
	)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%d of %d digests failed: %w", failed, len(inputs), err)
	}

	return nil
}
