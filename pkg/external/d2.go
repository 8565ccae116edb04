package external

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// runD2 renders d2 source to terminal text. d2 works on files, so the
// source goes through a temp directory that is removed afterwards.
func (r *Runner) runD2(ctx context.Context, code string) (string, error) {
	if !r.Available(ctx, r.opts.D2) {
		return "", fmt.Errorf("%w: %s", ErrNotInstalled, r.opts.D2)
	}

	dir, err := os.MkdirTemp("", "asciidiag-d2-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "diagram.d2")
	out := filepath.Join(dir, "diagram.txt")
	if err := os.WriteFile(in, []byte(code), 0644); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, r.opts.D2, in, out, "--format", "txt")
	if err := r.run(cmd, r.opts.D2); err != nil {
		return "", err
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return "", fmt.Errorf("%s produced no output: %w", r.opts.D2, err)
	}
	return string(data), nil
}
