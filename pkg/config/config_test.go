package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Layout.MinLaneWidth != 12 {
		t.Errorf("MinLaneWidth = %d, want 12", cfg.Layout.MinLaneWidth)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Backend = %q, want file", cfg.Cache.Backend)
	}
	if !cfg.External.Enabled {
		t.Error("external delegation should default on")
	}
	if cfg.Class.MaxMembers != 8 {
		t.Errorf("MaxMembers = %d, want 8", cfg.Class.MaxMembers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}
	if cfg.Layout.MinLaneWidth != Default().Layout.MinLaneWidth {
		t.Error("missing file should yield defaults")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[layout]
min_lane_width = 20

[cache]
backend = "memory"
max_entries = 16

[external]
enabled = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Layout.MinLaneWidth != 20 {
		t.Errorf("MinLaneWidth = %d, want 20", cfg.Layout.MinLaneWidth)
	}
	if cfg.Cache.Backend != "memory" || cfg.Cache.MaxEntries != 16 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.External.Enabled {
		t.Error("enabled = true, want overridden false")
	}
	// Untouched keys keep their defaults.
	if cfg.Layout.LaneGap != 3 {
		t.Errorf("LaneGap = %d, want default 3", cfg.Layout.LaneGap)
	}
	if cfg.External.D2 != "d2" {
		t.Errorf("D2 = %q, want default", cfg.External.D2)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("this is not toml ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted invalid TOML")
	}
}

func TestDefaultPathRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join("/tmp/xdg", "asciidiag", "config.toml") {
		t.Errorf("DefaultPath() = %q", path)
	}
}
