// Package cache provides pluggable storage for rendered artifacts and other
// pipeline byproducts. Backends share one interface so the CLI, the server
// and tests can swap file, memory, Redis, MongoDB or no-op storage without
// touching callers.
package cache

import (
	"context"
	"time"
)

// TTLs per cached item class. Artifacts are cheap to keep and expensive to
// recompute for external tools; probe results go stale when tools are
// installed or removed.
const (
	TTLArtifact = 7 * 24 * time.Hour
	TTLParse    = 24 * time.Hour
	TTLProbe    = time.Hour
)

// Cache is the storage interface shared by all backends.
// Get returns (data, hit, error); a miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ArtifactKeyOpts are the render parameters that distinguish artifacts built
// from the same source.
type ArtifactKeyOpts struct {
	Dialect string
	Kind    string
	Zoom    float64
	Tool    string
}

// Keyer generates cache keys. Implementations must be deterministic: the
// same inputs always yield the same key.
type Keyer interface {
	// SourceKey identifies a parsed graph by dialect and source hash.
	SourceKey(dialect, sourceHash string) string
	// ArtifactKey identifies a rendered artifact by source hash and the
	// options that shaped it.
	ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string
	// ProbeKey identifies the availability probe result for a tool.
	ProbeKey(tool string) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SourceKey generates a key for parsed graph caching.
func (k *DefaultKeyer) SourceKey(dialect, sourceHash string) string {
	return "parse:" + dialect + ":" + sourceHash
}

// ArtifactKey generates a key for rendered artifact caching.
// The options are hashed in so any parameter change misses.
func (k *DefaultKeyer) ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sourceHash, opts)
}

// ProbeKey generates a key for external tool probe results.
func (k *DefaultKeyer) ProbeKey(tool string) string {
	return "probe:" + tool
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
