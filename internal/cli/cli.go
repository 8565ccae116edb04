// Package cli implements the asciidiag command-line interface.
//
// This package provides commands for rendering diagram blocks in markdown
// documents to box-drawing text, viewing them interactively, exporting SVG,
// serving renders over HTTP, probing external tools, and managing the
// artifact cache. The CLI is built using cobra and supports verbose logging
// via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Render diagrams in a document or single block to text
//   - view: Browse a document's diagrams interactively with zoom keys
//   - export: Export a diagram's graph as SVG or DOT
//   - serve: Render diagrams over HTTP
//   - tools: Show which external renderers are installed
//   - cache: Manage the artifact cache
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/asciidiag/asciidiag/pkg/buildinfo"
	"github.com/asciidiag/asciidiag/pkg/cache"
	"github.com/asciidiag/asciidiag/pkg/canvas"
	"github.com/asciidiag/asciidiag/pkg/config"
	"github.com/asciidiag/asciidiag/pkg/external"
	"github.com/asciidiag/asciidiag/pkg/layout"
	"github.com/asciidiag/asciidiag/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "asciidiag"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Asciidiag renders diagram blocks as terminal text",
		Long:         `Asciidiag finds mermaid and d2 code blocks in markdown documents and renders them as box-drawing diagrams for the terminal, delegating to native tools like d2 and diagon when they are installed.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/asciidiag/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.toolsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Config loads the configuration once and memoizes it.
func (c *CLI) Config() config.Config {
	if c.cfg == nil {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			c.Logger.Warn("config load failed, using defaults", "err", err)
		}
		c.cfg = &cfg
	}
	return *c.cfg
}

// newRunner creates a pipeline runner for CLI use, wiring the configured
// cache backend and the external tool runner.
func (c *CLI) newRunner(ctx context.Context, noCache bool) *pipeline.Runner {
	cfg := c.Config()

	store := newCache(ctx, cfg.Cache, noCache)
	tools := external.NewRunner(external.Options{
		Enabled: cfg.External.Enabled,
		D2:      cfg.External.D2,
		Diagon:  cfg.External.Diagon,
		Timeout: time.Duration(cfg.External.TimeoutSeconds) * time.Second,
	}, store, nil, c.Logger)

	return pipeline.NewRunner(store, nil, tools, c.Logger)
}

func newCache(ctx context.Context, cfg config.Cache, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	store, err := cache.New(ctx, cache.Options{
		Backend:    cfg.Backend,
		Dir:        dir,
		MaxEntries: cfg.MaxEntries,
		RedisAddr:  cfg.RedisAddr,
		MongoURI:   cfg.MongoURI,
	})
	if err != nil {
		// A broken backend should not block rendering.
		return cache.NewNullCache()
	}
	return store
}

// pipelineOptions maps the configuration onto pipeline options.
func (c *CLI) pipelineOptions(zoom float64, noExternal, refresh bool) pipeline.Options {
	cfg := c.Config()
	return pipeline.Options{
		Zoom:     zoom,
		External: cfg.External.Enabled && !noExternal,
		Refresh:  refresh,
		Layout: layout.Options{
			MinLaneWidth:   cfg.Layout.MinLaneWidth,
			LaneGap:        cfg.Layout.LaneGap,
			ClassRowBudget: cfg.Layout.ClassRowBudget,
		},
		Limits: canvas.Limits{
			MaxWidth:  cfg.Layout.MaxCanvasWidth,
			MaxHeight: cfg.Layout.MaxCanvasHeight,
		},
		MaxClassMembers: cfg.Class.MaxMembers,
		Logger:          c.Logger,
	}
}

// cacheDir returns the cache directory using XDG standard (~/.cache/asciidiag/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// readInput reads a file argument, with "-" meaning stdin.
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
