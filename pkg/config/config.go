// Package config loads the asciidiag configuration file.
//
// All product-tunable rendering constants live here rather than as
// hardcoded values: the class member elision threshold, the lane width
// floor, canvas size limits, cache sizing, and the external tool commands.
// Configuration is TOML, read from $XDG_CONFIG_HOME/asciidiag/config.toml
// (or ~/.config/asciidiag/config.toml). A missing file yields defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full configuration tree.
type Config struct {
	Layout   Layout   `toml:"layout"`
	Class    Class    `toml:"class"`
	Cache    Cache    `toml:"cache"`
	External External `toml:"external"`
}

// Layout holds layout-engine tunables. Widths and heights are in grid cells
// at zoom 1.0; the zoom factor scales them before layout.
type Layout struct {
	MinLaneWidth    int `toml:"min_lane_width"`
	LaneGap         int `toml:"lane_gap"`
	MaxCanvasWidth  int `toml:"max_canvas_width"`
	MaxCanvasHeight int `toml:"max_canvas_height"`
	ClassRowBudget  int `toml:"class_row_budget"`
}

// Class holds class-diagram tunables.
type Class struct {
	// MaxMembers caps the member lines folded into a class label; beyond it
	// a single "+N more" line replaces the rest.
	MaxMembers int `toml:"max_members"`
}

// Cache selects and sizes the artifact cache backend.
type Cache struct {
	Backend    string `toml:"backend"` // memory | file | redis | mongo | none
	MaxEntries int    `toml:"max_entries"`
	RedisAddr  string `toml:"redis_addr"`
	MongoURI   string `toml:"mongo_uri"`
}

// External configures delegation to native diagram renderers.
type External struct {
	Enabled        bool   `toml:"enabled"`
	D2             string `toml:"d2"`
	Diagon         string `toml:"diagon"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Default returns the shipped configuration.
func Default() Config {
	return Config{
		Layout: Layout{
			MinLaneWidth:    12,
			LaneGap:         3,
			MaxCanvasWidth:  4000,
			MaxCanvasHeight: 4000,
			ClassRowBudget:  100,
		},
		Class: Class{MaxMembers: 8},
		Cache: Cache{
			Backend:    "file",
			MaxEntries: 128,
			RedisAddr:  "localhost:6379",
		},
		External: External{
			Enabled:        true,
			D2:             "d2",
			Diagon:         "diagon",
			TimeoutSeconds: 10,
		},
	}
}

// Load reads the config file at path, merged over defaults.
// An empty path loads the default location; a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns the XDG config file location.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "asciidiag", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "asciidiag", "config.toml"), nil
}
