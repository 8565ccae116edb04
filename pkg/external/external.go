// Package external delegates diagram rendering to locally installed tools.
//
// Two tools are supported: d2 (terminal output via --format txt) and diagon
// (stdin-driven generators). Tool availability is probed once with LookPath
// and memoized; probe results can also be persisted in a cache so repeated
// CLI runs skip the lookup. Every invocation is time-bounded through the
// context, and any failure is reported to the caller, which falls back to
// the builtin renderer.
package external

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/asciidiag/asciidiag/pkg/cache"
	"github.com/asciidiag/asciidiag/pkg/canvas"
	"github.com/asciidiag/asciidiag/pkg/diagram"
)

// Sentinel errors for tool delegation.
var (
	// ErrDisabled is returned when external tools are turned off in config.
	ErrDisabled = errors.New("external tools disabled")

	// ErrNotInstalled is returned when no installed tool handles the block.
	ErrNotInstalled = errors.New("tool not installed")

	// ErrUnsupported is returned when no tool is mapped to the dialect.
	ErrUnsupported = errors.New("no external tool for dialect")
)

// Options configures tool delegation. Empty binary names fall back to the
// standard names; a zero timeout falls back to 10 seconds.
type Options struct {
	Enabled bool
	D2      string
	Diagon  string
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.D2 == "" {
		o.D2 = "d2"
	}
	if o.Diagon == "" {
		o.Diagon = "diagon"
	}
	if o.Timeout == 0 {
		o.Timeout = 10 * time.Second
	}
	return o
}

// Runner probes for and invokes external diagram tools.
type Runner struct {
	opts   Options
	logger *log.Logger

	cache cache.Cache // optional probe persistence
	keyer cache.Keyer

	mu    sync.Mutex
	avail map[string]bool

	// lookPath is swapped in tests.
	lookPath func(string) (string, error)
}

// NewRunner creates a tool runner. The cache is optional; when set, probe
// results persist across runs with a short TTL.
func NewRunner(opts Options, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		opts:     opts.withDefaults(),
		logger:   logger,
		cache:    c,
		keyer:    keyer,
		avail:    make(map[string]bool),
		lookPath: exec.LookPath,
	}
}

// Available reports whether the named binary is installed. The first lookup
// per tool hits PATH (or the persisted probe result); later calls are
// answered from memory.
func (r *Runner) Available(ctx context.Context, tool string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ok, seen := r.avail[tool]; seen {
		return ok
	}

	if r.cache != nil {
		if data, hit, err := r.cache.Get(ctx, r.keyer.ProbeKey(tool)); err == nil && hit {
			ok := string(data) == "1"
			r.avail[tool] = ok
			return ok
		}
	}

	_, err := r.lookPath(tool)
	ok := err == nil
	r.avail[tool] = ok
	r.logger.Debug("probed external tool", "tool", tool, "available", ok)

	if r.cache != nil {
		val := []byte("0")
		if ok {
			val = []byte("1")
		}
		_ = r.cache.Set(ctx, r.keyer.ProbeKey(tool), val, cache.TTLProbe)
	}
	return ok
}

// Render delegates a block to the best installed tool for its dialect.
// Mermaid sequence blocks prefer diagon, mermaid flowcharts prefer d2 with
// a syntax conversion; d2 blocks go straight to d2 and math blocks to
// diagon's math generator. The returned artifact carries the producing
// tool's name.
func (r *Runner) Render(ctx context.Context, src diagram.Source, zoom float64) (*canvas.Artifact, error) {
	if !r.opts.Enabled {
		return nil, ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	var (
		out  string
		tool string
		err  error
	)
	switch {
	case src.Dialect == diagram.DialectD2:
		tool = r.opts.D2
		out, err = r.runD2(ctx, src.Text)
	case src.Dialect == diagram.DialectSequence:
		tool = r.opts.Diagon
		out, err = r.runDiagon(ctx, "sequence", src.Text)
	case src.Dialect == diagram.DialectMath:
		tool = r.opts.Diagon
		out, err = r.runDiagon(ctx, "math", src.Text)
	case src.Dialect == diagram.DialectMermaid && src.Kind == diagram.KindSequence:
		if r.Available(ctx, r.opts.Diagon) {
			tool = r.opts.Diagon
			out, err = r.runDiagon(ctx, "sequence", MermaidToDiagon(src.Text))
		} else {
			tool = r.opts.D2
			out, err = r.runD2(ctx, MermaidToD2(src.Text))
		}
	case src.Dialect == diagram.DialectMermaid && src.Kind == diagram.KindFlow:
		tool = r.opts.D2
		out, err = r.runD2(ctx, MermaidToD2(src.Text))
	default:
		return nil, fmt.Errorf("%w: %s/%s", ErrUnsupported, src.Dialect, src.Kind)
	}
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	return canvas.FromLines(lines, src.Dialect, src.Kind, zoom, tool), nil
}

// run executes a prepared command, capturing stderr for the error message.
func (r *Runner) run(cmd *exec.Cmd, tool string) error {
	var errBuf strings.Builder
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(errBuf.String())
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return fmt.Errorf("%s: %v: %s", tool, err, msg)
	}
	return nil
}
