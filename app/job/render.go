package job

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Semior001/xdigest/app/digest"
	"github.com/Semior001/xdigest/app/render"
)

// Stdin is the input path that makes the renderer read standard input.
const Stdin = "-"

// Renderer is the terminal handler that reads, renders and writes digests.
type Renderer struct {
	Renderer *render.Renderer
	Stdin    io.Reader
}

// Handle renders the digest from req.Input into req.Output.
// Output is written only once the page is fully rendered.
func (r *Renderer) Handle(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	start := time.Now()

	d, input, err := r.read(req.Input)
	if err != nil {
		return Result{}, err
	}

	output, err := filepath.Abs(req.Output)
	if err != nil {
		return Result{}, fmt.Errorf("resolve output path: %w", err)
	}

	buf := &bytes.Buffer{}
	page, err := r.Renderer.Render(ctx, buf, req.Template, d)
	if err != nil {
		return Result{}, fmt.Errorf("render %s: %w", req.Input, err)
	}

	if err = WriteOutput(output, buf.Bytes()); err != nil {
		return Result{}, err
	}

	id, _ := RenderIDFromContext(ctx)

	return Result{
		RenderID: id,
		Input:    input,
		Output:   output,
		Title:    page.HeaderTitle,
		Date:     page.Date,
		Sections: len(page.Sections),
		Items:    page.ItemCount(),
		Elapsed:  time.Since(start),
	}, nil
}

func (r *Renderer) read(path string) (d digest.Digest, abs string, err error) {
	if path == Stdin {
		if d, err = digest.Decode(r.Stdin); err != nil {
			return digest.Digest{}, "", fmt.Errorf("read digest from stdin: %w", err)
		}
		return d, Stdin, nil
	}

	if abs, err = filepath.Abs(path); err != nil {
		return digest.Digest{}, "", fmt.Errorf("resolve input path: %w", err)
	}

	f, err := os.Open(abs)
	if err != nil {
		return digest.Digest{}, "", fmt.Errorf("open digest: %w", err)
	}
	defer func() { _ = f.Close() }()

	if d, err = digest.Decode(f); err != nil {
		return digest.Digest{}, "", fmt.Errorf("read digest from %s: %w", path, err)
	}

	return d, abs, nil
}

// WriteOutput writes the page, creating parent directories if needed.
func WriteOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("make output dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
