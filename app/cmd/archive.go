package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Semior001/xdigest/app/digest"
	"github.com/Semior001/xdigest/app/job"
	"github.com/Semior001/xdigest/app/render"
	"github.com/Semior001/xdigest/app/store"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// Archive groups commands to manage the archive of rendered digests.
type Archive struct {
	List   ArchiveList   `command:"list" description:"list archived digests"`
	Index  ArchiveIndex  `command:"index" description:"render an index page of archived digests"`
	Delete ArchiveDelete `command:"delete" description:"remove a digest from the archive"`
}

// ArchiveList is a command to print archived digests.
type ArchiveList struct {
	CommonOpts
	Limit int `long:"limit" env:"LIMIT" default:"0" description:"max number of entries, 0 for all"`

	stdout io.Writer
}

// Execute runs the command.
func (a *ArchiveList) Execute(_ []string) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore(s)

	entries, err := s.List(context.Background(), store.ListRequest{Limit: a.Limit})
	if err != nil {
		return fmt.Errorf("list archive: %w", err)
	}

	out := a.stdout
	if out == nil {
		out = os.Stdout
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RENDERED\tTITLE\tDATE\tSECTIONS\tITEMS\tPAGE")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			e.RenderedAt.Local().Format(time.DateTime), e.Title, e.Date, e.Sections, e.Items, e.ID)
	}

	if err = w.Flush(); err != nil {
		return fmt.Errorf("print archive: %w", err)
	}

	return nil
}

// ArchiveIndex is a command to render the page linking every archived digest.
type ArchiveIndex struct {
	CommonOpts
	Output   string `short:"o" long:"output" env:"OUTPUT" default:"archive.html" description:"output html path"`
	Template string `short:"t" long:"template" env:"TEMPLATE" description:"template path, embedded template if empty"`
	Title    string `long:"title" env:"TITLE" default:"Digest Archive" description:"title of the index page"`
}

// Execute runs the command.
func (a *ArchiveIndex) Execute(_ []string) error {
	lg := slog.Default()
	ctx := context.Background()

	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore(s)

	entries, err := s.List(ctx, store.ListRequest{})
	if err != nil {
		return fmt.Errorf("list archive: %w", err)
	}

	output, err := filepath.Abs(a.Output)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	buf := &bytes.Buffer{}
	rnd := render.NewRenderer(lg.With(slog.String("prefix", "render")), maxTemplates)
	if _, err = rnd.Render(ctx, buf, a.Template, indexDigest(a.Title, filepath.Dir(output), entries)); err != nil {
		return fmt.Errorf("render index: %w", err)
	}

	if err = job.WriteOutput(output, buf.Bytes()); err != nil {
		return err
	}

	lg.Info("archive index rendered", slog.String("output", output), slog.Int("entries", len(entries)))
	return nil
}

// indexDigest makes a digest with a single section linking archived pages
// relative to dir.
func indexDigest(title, dir string, entries []store.Entry) digest.Digest {
	d := digest.Digest{Title: digest.NewText(title)}
	if len(entries) == 0 {
		return d
	}

	items := lo.Map(entries, func(e store.Entry, _ int) digest.Item {
		href, err := filepath.Rel(dir, e.ID)
		if err != nil {
			href = e.ID
		}

		name := e.Title
		if e.Date != "" {
			name += " · " + e.Date
		}

		return digest.Item{
			Title: digest.NewText(name),
			Body: digest.NewText(fmt.Sprintf("%d sections, %d items, rendered %s",
				e.Sections, e.Items, e.RenderedAt.UTC().Format(time.DateTime))),
			URL:       digest.NewText(filepath.ToSlash(href)),
			LinkLabel: digest.NewText("Open"),
		}
	})

	d.Sections = digest.List[digest.Section]{{
		Emoji: digest.NewText("🗂️"),
		Title: digest.NewText("Archive"),
		Items: items,
	}}

	return d
}

// ArchiveDelete is a command to remove an archived digest.
type ArchiveDelete struct {
	CommonOpts
	Args struct {
		Page string `positional-arg-name:"page" required:"true" description:"path of the rendered page"`
	} `positional-args:"yes"`
}

// Execute runs the command.
func (a *ArchiveDelete) Execute(_ []string) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore(s)

	id, err := filepath.Abs(strings.TrimSpace(a.Args.Page))
	if err != nil {
		return fmt.Errorf("resolve page path: %w", err)
	}

	if err = s.Delete(context.Background(), id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}

	slog.Info("archive entry deleted", slog.String("page", id))
	return nil
}

func closeStore(s *store.Bolt) {
	if err := s.Close(); err != nil {
		slog.Error("close bolt store", slog.Any("err", err))
	}
}
