package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Semior001/xdigest/app/job"
	"github.com/Semior001/xdigest/app/render"
	"golang.org/x/exp/slog"
)

// Render is a command to render a single digest.
type Render struct {
	CommonOpts
	Input    string `short:"i" long:"input" env:"INPUT" required:"true" description:"path to digest json, - for stdin"`
	Output   string `short:"o" long:"output" env:"OUTPUT" default:"index.html" description:"output html path"`
	Template string `short:"t" long:"template" env:"TEMPLATE" description:"template path, embedded template if empty"`
}

// Execute runs the command.
func (r *Render) Execute(_ []string) error {
	lg := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rnd := render.NewRenderer(lg.With(slog.String("prefix", "render")), maxTemplates)

	h, closeFn, err := r.pipeline(lg, rnd)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer closeFn()

	if _, err = h(ctx, job.Request{Input: r.Input, Output: r.Output, Template: r.Template}); err != nil {
		return fmt.Errorf("render %s: %w", r.Input, err)
	}

	return nil
}
