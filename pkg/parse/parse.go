// Package parse turns diagram source text into a dialect-neutral graph.
//
// Parsing is line-oriented with one per-line grammar per sub-kind, dispatched
// from a single entry point. A single malformed line aborts the whole parse
// with an Error naming the offending line; partial graphs are never returned,
// so layout only ever sees complete input.
package parse

import (
	"fmt"
	"strings"

	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/graph"
)

// DefaultMaxClassMembers caps the member lines folded into a class label
// when Options does not override it.
const DefaultMaxClassMembers = 8

// Error describes a malformed source line. It aborts the parse of its block;
// sibling blocks in the same document are unaffected.
type Error struct {
	Line     int    // 1-based line number within the block
	Text     string // the offending line, trimmed
	Expected string // expected-token description
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at line %d: %q: expected %s", e.Line, e.Text, e.Expected)
}

func errAt(line int, text, expected string) *Error {
	return &Error{Line: line, Text: strings.TrimSpace(text), Expected: expected}
}

// Options carries parser tunables.
type Options struct {
	// MaxClassMembers caps member lines per class before "+N more" elision.
	// Zero means DefaultMaxClassMembers.
	MaxClassMembers int
}

func (o Options) maxMembers() int {
	if o.MaxClassMembers > 0 {
		return o.MaxClassMembers
	}
	return DefaultMaxClassMembers
}

// Parse converts a classified source block into a Graph.
//
// Sub-kinds without a dedicated grammar (including "unknown") fall back to a
// lenient node-edge parse that skips unrecognized lines, so any mermaid-ish
// text yields a best-effort graph instead of an error.
func Parse(src diagram.Source, opts Options) (*graph.Graph, error) {
	lines := strings.Split(src.Text, "\n")

	switch src.Kind {
	case diagram.KindSequence:
		return parseSequence(lines)
	case diagram.KindFlow:
		return parseFlowchart(lines)
	case diagram.KindClass:
		return parseClass(lines, opts.maxMembers())
	case diagram.KindNodeEdge:
		return parseNodeEdge(lines, true)
	}
	return parseNodeEdge(lines, false)
}

// skippable reports lines every grammar ignores: blanks and %% comments.
func skippable(line string) bool {
	s := strings.TrimSpace(line)
	return s == "" || strings.HasPrefix(s, "%%") || strings.HasPrefix(s, "#")
}
