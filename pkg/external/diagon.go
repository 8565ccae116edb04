package external

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// runDiagon renders source with a diagon generator (sequence, flowchart,
// tree). diagon reads stdin and writes the drawing to stdout.
func (r *Runner) runDiagon(ctx context.Context, generator, code string) (string, error) {
	if !r.Available(ctx, r.opts.Diagon) {
		return "", fmt.Errorf("%w: %s", ErrNotInstalled, r.opts.Diagon)
	}

	cmd := exec.CommandContext(ctx, r.opts.Diagon, generator)
	cmd.Stdin = strings.NewReader(code)

	var out bytes.Buffer
	cmd.Stdout = &out
	if err := r.run(cmd, r.opts.Diagon); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", fmt.Errorf("%s produced no output", r.opts.Diagon)
	}
	return out.String(), nil
}
