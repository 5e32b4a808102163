// Package main is an entrypoint for application
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/Semior001/xdigest/app/cmd"
	"github.com/Semior001/xdigest/pkg/logx"
	"github.com/jessevdk/go-flags"
	"golang.org/x/exp/slog"
)

var opts struct {
	Render  cmd.Render  `command:"render" description:"render a digest json into an html page"`
	Batch   cmd.Batch   `command:"batch" description:"render every digest json in a directory"`
	Archive cmd.Archive `command:"archive" description:"manage the archive of rendered digests"`

	StorePath string `long:"store-path" env:"STORE_PATH" description:"parent dir for the archive bolt file, renders are not archived if empty"`
	JSONLogs  bool   `long:"json-logs" env:"JSON_LOGS" description:"turn on json logs"`
	Debug     bool   `long:"dbg" env:"DEBUG" description:"turn on debug mode"`
}

var version = "unknown"

func getVersion() string {
	v, ok := debug.ReadBuildInfo()
	if !ok || v.Main.Version == "(devel)" {
		return version
	}
	return v.Main.Version
}

func main() {
	_, _ = fmt.Fprintf(os.Stderr, "xdigest, version: %s\n", getVersion())

	p := flags.NewParser(&opts, flags.Default)
	p.CommandHandler = func(command flags.Commander, args []string) error {
		setupLog()

		if c, ok := command.(interface{ SetCommon(cmd.CommonOpts) }); ok {
			c.SetCommon(cmd.CommonOpts{StorePath: opts.StorePath})
		}

		if err := command.Execute(args); err != nil {
			slog.Error("failed to execute command", slog.Any("err", err))
			os.Exit(1)
		}

		return nil
	}

	// after failure command does not return non-zero code
	if _, err := p.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		} else {
			slog.Error("failed to parse flags", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func setupLog() {
	handler := slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelInfo,
		ReplaceAttr: nil,
	}

	if opts.Debug {
		handler.Level = slog.LevelDebug
		handler.AddSource = true
	}

	var h slog.Handler = handler.NewTextHandler(os.Stderr)
	if opts.JSONLogs {
		h = handler.NewJSONHandler(os.Stderr)
	}

	slog.SetDefault(slog.New(&logx.Chain{
		Middleware: []logx.Middleware{logx.ContextAttrs},
		Handler:    h,
	}))
}
