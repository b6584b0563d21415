package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"qosst-scope/internal/failure"
)

// WriteFile renders fig and replaces path with the result.
//
// The image is encoded fully in memory and written to a temporary file next
// to path before being renamed over it, so a failed run never leaves a
// truncated image behind.
func WriteFile(path string, fig *Figure, opts Options) error {
	var buf bytes.Buffer
	if err := fig.Render(&buf, opts); err != nil {
		return fmt.Errorf("failed to render diagnostic: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".qosst-plot-*.png")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", failure.ErrOutputWrite, path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", failure.ErrOutputWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", failure.ErrOutputWrite, path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", failure.ErrOutputWrite, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", failure.ErrOutputWrite, path, err)
	}
	return nil
}
