package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/asciidiag/asciidiag/pkg/cache"
	"github.com/asciidiag/asciidiag/pkg/canvas"
	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/external"
	"github.com/asciidiag/asciidiag/pkg/graph"
	"github.com/asciidiag/asciidiag/pkg/layout"
	"github.com/asciidiag/asciidiag/pkg/parse"
)

// Runner executes the render pipeline with caching and tool delegation.
//
// The Runner is stateless except for the cache, the tool runner and the
// logger; multiple goroutines can share one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Tools  *external.Runner
	Logger *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If tools is nil, external delegation is disabled.
func NewRunner(c cache.Cache, keyer cache.Keyer, tools *external.Runner, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Tools:  tools,
		Logger: logger,
	}
}

// Execute renders one diagram block.
//
// The artifact cache is consulted first. On a miss, external tools get the
// block when delegation is on; any tool failure falls back to the builtin
// parse → layout → render path with the reason noted on the result.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		SourceHash: cache.Hash([]byte(opts.Source.Text)),
	}

	artifactKey := r.Keyer.ArtifactKey(result.SourceHash, cache.ArtifactKeyOpts{
		Dialect: string(opts.Source.Dialect),
		Kind:    string(opts.Source.Kind),
		Zoom:    opts.Zoom,
		Tool:    r.toolMode(opts),
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, artifactKey); err == nil && hit {
			var a canvas.Artifact
			if err := json.Unmarshal(data, &a); err == nil {
				result.Artifact = &a
				result.CacheInfo.ArtifactHit = true
				return result, nil
			}
		}
	}

	if opts.External && r.Tools != nil {
		renderStart := time.Now()
		artifact, err := r.Tools.Render(ctx, opts.Source, opts.Zoom)
		if err == nil {
			result.Artifact = artifact
			result.Stats.RenderTime = time.Since(renderStart)
			r.cacheArtifact(ctx, artifactKey, artifact)
			opts.Logger.Info("rendered with external tool",
				"tool", artifact.Tool,
				"duration", result.Stats.RenderTime)
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, external.ErrDisabled) && !errors.Is(err, external.ErrUnsupported) {
			result.Note = fmt.Sprintf("external tool unavailable, using builtin renderer: %v", err)
			opts.Logger.Info("falling back to builtin renderer", "reason", err)
		}
	}

	// Math has no builtin grammar: without a tool the expression is shown
	// as a framed code block instead of going through parse and layout.
	if opts.Source.Dialect == diagram.DialectMath {
		artifact := canvas.CodeBlock(opts.Source.Dialect, opts.Source.Kind, opts.Source.Text)
		result.Artifact = artifact
		r.cacheArtifact(ctx, artifactKey, artifact)
		opts.Logger.Debug("rendered math block as code",
			"size", fmt.Sprintf("%dx%d", artifact.Width, artifact.Height))
		return result, nil
	}

	// Stage 1: Parse
	parseStart := time.Now()
	g, parseHit, err := r.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Graph = g
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.ParseHit = parseHit

	opts.Logger.Debug("parsed block",
		"kind", opts.Source.Kind,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	grid, err := layout.Compute(g, opts.Zoom, opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)

	// Stage 3: Render
	renderStart := time.Now()
	artifact, err := canvas.Render(g, grid, opts.Source.Dialect, opts.Zoom, opts.Limits)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifact = artifact
	result.Stats.RenderTime = time.Since(renderStart)

	r.cacheArtifact(ctx, artifactKey, artifact)

	opts.Logger.Debug("rendered block",
		"size", fmt.Sprintf("%dx%d", artifact.Width, artifact.Height),
		"zoom", opts.Zoom,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ParseWithCacheInfo parses the block with caching and reports whether the
// graph came from cache.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, opts Options) (*graph.Graph, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	sourceHash := cache.Hash([]byte(opts.Source.Text))
	cacheKey := r.Keyer.SourceKey(string(opts.Source.Dialect), sourceHash)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if g, err := graph.Unmarshal(data); err == nil {
				return g, true, nil
			}
		}
	}

	g, err := parse.Parse(opts.Source, parse.Options{MaxClassMembers: opts.MaxClassMembers})
	if err != nil {
		return nil, false, err
	}

	if data, err := graph.Marshal(g); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLParse)
	}
	return g, false, nil
}

// Parse is a convenience wrapper that discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, opts Options) (*graph.Graph, error) {
	g, _, err := r.ParseWithCacheInfo(ctx, opts)
	return g, err
}

// toolMode keys artifacts produced with delegation apart from builtin ones,
// since the same source renders differently under each.
func (r *Runner) toolMode(opts Options) string {
	if opts.External && r.Tools != nil {
		return "auto"
	}
	return "internal"
}

func (r *Runner) cacheArtifact(ctx context.Context, key string, a *canvas.Artifact) {
	if data, err := json.Marshal(a); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
