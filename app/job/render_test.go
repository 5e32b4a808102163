package job

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Semior001/xdigest/app/digest"
	"github.com/Semior001/xdigest/app/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

const digestJSON = `{
  "title": "X Feed Digest",
  "date": "Friday, February 6th, 2026",
  "sections": [
    {"emoji": "🤖", "title": "AI", "items": [{"title": "one", "url": "https://x.com/1"}, {"title": "two"}]},
    {"emoji": "📈", "title": "Markets", "items": [{"title": "three"}]}
  ]
}`

func newRenderer(stdin string) *Renderer {
	return &Renderer{
		Renderer: render.NewRenderer(slog.Default(), 10),
		Stdin:    strings.NewReader(stdin),
	}
}

func TestRenderer_Handle(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "digest.json")
	out := filepath.Join(dir, "nested", "site", "index.html")
	require.NoError(t, os.WriteFile(in, []byte(digestJSON), 0o600))

	ctx := context.WithValue(context.Background(), renderIDKey{}, "id")
	res, err := newRenderer("").Handle(ctx, Request{Input: in, Output: out})
	require.NoError(t, err)

	assert.Equal(t, "id", res.RenderID)
	assert.Equal(t, in, res.Input)
	assert.Equal(t, out, res.Output)
	assert.Equal(t, "X Feed Digest", res.Title)
	assert.Equal(t, "Friday, February 6th, 2026", res.Date)
	assert.Equal(t, 2, res.Sections)
	assert.Equal(t, 3, res.Items)

	bts, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(bts), "<h1>X Feed Digest</h1>")
	assert.Contains(t, string(bts), `<div class="date">Friday, February 6th, 2026</div>`)
	assert.Equal(t, 1, strings.Count(string(bts), ">View Tweet</a>"))
}

func TestRenderer_Handle_Stdin(t *testing.T) {
	out := filepath.Join(t.TempDir(), "index.html")

	res, err := newRenderer(`{"title": "From stdin"}`).Handle(context.Background(), Request{Input: Stdin, Output: out})
	require.NoError(t, err)
	assert.Equal(t, Stdin, res.Input)
	assert.Equal(t, "From stdin", res.Title)
	assert.FileExists(t, out)
}

func TestRenderer_Handle_Errors(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0o600))

	malformed := filepath.Join(dir, "malformed.json")
	require.NoError(t, os.WriteFile(malformed, []byte(`{"title": `), 0o600))

	array := filepath.Join(dir, "array.json")
	require.NoError(t, os.WriteFile(array, []byte(`[]`), 0o600))

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(digestJSON), 0o600))

	r := newRenderer("")

	_, err := r.Handle(context.Background(), Request{Input: filepath.Join(dir, "missing.json"), Output: out})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = r.Handle(context.Background(), Request{Input: malformed, Output: out})
	assert.ErrorContains(t, err, "parse json")

	_, err = r.Handle(context.Background(), Request{Input: array, Output: out})
	assert.ErrorIs(t, err, digest.ErrNotObject)

	_, err = r.Handle(context.Background(), Request{Input: valid, Output: out, Template: filepath.Join(dir, "nope")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Handle(ctx, Request{Input: malformed, Output: out})
	assert.ErrorIs(t, err, context.Canceled)

	bts, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(bts), "failed renders must not touch the output")
}
