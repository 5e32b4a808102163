// Package render turns digests into HTML pages.
package render

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/Semior001/xdigest/app/digest"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"golang.org/x/exp/slog"
)

//go:embed data/template.html
var defaultTemplate string

var defaultTmpl = template.Must(template.New("digest").Parse(defaultTemplate))

// Renderer executes page templates. Templates loaded from files are parsed
// once per path and kept in an LRU cache.
type Renderer struct {
	log       *slog.Logger
	templates cache.Cache[string, *template.Template]
}

// NewRenderer creates new Renderer that keeps at most maxTemplates parsed
// templates in memory.
func NewRenderer(lg *slog.Logger, maxTemplates int) *Renderer {
	return &Renderer{
		log: lg,
		templates: cache.NewCache[string, *template.Template]().
			WithLRU().
			WithMaxKeys(maxTemplates),
	}
}

// CacheStat returns template cache stats.
func (r *Renderer) CacheStat() cache.Stats { return r.templates.Stat() }

// Render writes the page for the digest to w. An empty tmplPath means the
// embedded default template.
func (r *Renderer) Render(ctx context.Context, w io.Writer, tmplPath string, d digest.Digest) (Page, error) {
	page := BuildPage(d)

	if err := r.RenderPage(ctx, w, tmplPath, page); err != nil {
		return Page{}, err
	}

	return page, nil
}

// RenderPage writes already built page to w.
func (r *Renderer) RenderPage(ctx context.Context, w io.Writer, tmplPath string, page Page) error {
	tmpl, err := r.template(ctx, tmplPath)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}

	if err = tmpl.Execute(w, page); err != nil {
		return fmt.Errorf("execute template %s: %w", tmpl.Name(), err)
	}

	return nil
}

func (r *Renderer) template(ctx context.Context, path string) (*template.Template, error) {
	if path == "" {
		return defaultTmpl, nil
	}

	if tmpl, ok := r.templates.Get(path); ok {
		return tmpl, nil
	}

	r.log.DebugCtx(ctx, "parsing template", slog.String("path", path))

	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	tmpl, err := template.New(filepath.Base(path)).Parse(string(bts))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	r.templates.Set(path, tmpl, 0)
	return tmpl, nil
}
