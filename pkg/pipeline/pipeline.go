// Package pipeline runs the classify → parse → layout → render pipeline for
// diagram blocks.
//
// The Runner is used by the CLI, the viewer and the HTTP server. Rendering
// prefers installed external tools (d2, diagon) when enabled and silently
// falls back to the builtin renderer when a tool is missing or fails; the
// fallback reason is carried on the result as a note and logged once.
// Finished artifacts are cached keyed by source hash and render parameters.
//
// The Session type adds sequencing on top of the Runner for interactive
// callers: each render request gets a monotonically increasing sequence
// number, a new request cancels the in-flight one, and results from
// superseded requests are discarded.
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/asciidiag/asciidiag/pkg/canvas"
	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/graph"
	"github.com/asciidiag/asciidiag/pkg/layout"
)

// DefaultZoom is the zoom factor used when none is requested.
const DefaultZoom = 1.0

// Options configures one render. The zero value needs at least Source.
type Options struct {
	// Source is the diagram block to render. When Dialect is unset it is
	// classified from Tag and Text during validation.
	Source diagram.Source

	// Zoom is the requested zoom factor, clamped to the layout bounds.
	Zoom float64

	// External delegates to installed tools before the builtin renderer.
	External bool

	// Refresh bypasses cache reads (results are still written).
	Refresh bool

	Layout          layout.Options
	Limits          canvas.Limits
	MaxClassMembers int

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source.Text == "" {
		return fmt.Errorf("source text is required")
	}
	if o.Source.Dialect == "" {
		o.Source.Dialect, o.Source.Kind = diagram.Classify(o.Source.Tag, o.Source.Text)
	}
	if !o.Source.Renderable() {
		return fmt.Errorf("unsupported diagram tag %q", o.Source.Tag)
	}
	if o.Zoom == 0 {
		o.Zoom = DefaultZoom
	}
	o.Zoom = layout.ClampZoom(o.Zoom)
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Result contains the outputs of one render.
type Result struct {
	// Graph is the parsed graph; nil when an external tool or the cache
	// produced the artifact.
	Graph *graph.Graph

	// SourceHash is the content hash of the block source.
	SourceHash string

	// Artifact is the finished rendering.
	Artifact *canvas.Artifact

	// Note carries a one-line informational message, such as why tool
	// delegation fell back to the builtin renderer.
	Note string

	// Seq is the session sequence number; zero outside a Session.
	Seq uint64

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for the pipeline stages.
type CacheInfo struct {
	ParseHit    bool // parsed graph came from cache
	ArtifactHit bool // finished artifact came from cache
}
