// Package diagram classifies fenced code blocks into dialects and sub-kinds.
//
// Classification is pure string inspection: the fence tag picks the dialect,
// and for mermaid the first meaningful body line picks the sub-kind. Nothing
// here parses the body; that is the parse package's job.
package diagram

import "strings"

// Dialect is the source language of a diagram block.
type Dialect string

const (
	DialectMermaid     Dialect = "mermaid"
	DialectD2          Dialect = "d2"
	DialectSequence    Dialect = "sequence" // diagon-style sequence blocks
	DialectMath        Dialect = "math"     // LaTeX expressions for diagon's math generator
	DialectUnsupported Dialect = "unsupported"
)

// SubKind is the diagram family within a dialect. It selects the grammar
// and the layout strategy.
type SubKind string

const (
	KindSequence SubKind = "sequence"
	KindFlow     SubKind = "flowchart"
	KindClass    SubKind = "class"
	KindNodeEdge SubKind = "nodeedge"
	KindMath     SubKind = "math"
	KindUnknown  SubKind = "unknown"
)

// extendedKinds are mermaid headers without a dedicated grammar. They still
// classify as mermaid so the lenient parser can extract what it recognizes.
var extendedKinds = map[string]bool{
	"erDiagram":          true,
	"stateDiagram":       true,
	"stateDiagram-v2":    true,
	"gantt":              true,
	"pie":                true,
	"journey":            true,
	"gitGraph":           true,
	"mindmap":            true,
	"timeline":           true,
	"quadrantChart":      true,
	"requirementDiagram": true,
}

// Source is one fenced diagram block lifted out of a document.
type Source struct {
	Tag     string // fence info string, lowercased
	Text    string // body between the fences
	Line    int    // 0-based line of the opening fence
	EndLine int    // 0-based line of the closing fence

	Dialect Dialect
	Kind    SubKind
}

// Renderable reports whether the pipeline has any strategy for this block.
func (s Source) Renderable() bool {
	return s.Dialect != DialectUnsupported
}

// Classify maps a fence tag and body to a dialect and sub-kind.
// Unrecognized tags are DialectUnsupported; those blocks pass through the
// pipeline untouched.
func Classify(tag, body string) (Dialect, SubKind) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "mermaid", "mmd":
		return DialectMermaid, mermaidKind(body)
	case "d2":
		return DialectD2, KindNodeEdge
	case "sequence", "seq", "diagon":
		return DialectSequence, KindSequence
	case "math", "latex":
		return DialectMath, KindMath
	}
	return DialectUnsupported, KindUnknown
}

// mermaidKind reads the first meaningful line of a mermaid body and keys off
// its leading word.
func mermaidKind(body string) SubKind {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		word := line
		if i := strings.IndexAny(word, " \t"); i >= 0 {
			word = word[:i]
		}
		switch {
		case word == "sequenceDiagram":
			return KindSequence
		case word == "flowchart" || word == "graph":
			return KindFlow
		case word == "classDiagram" || word == "classDiagram-v2":
			return KindClass
		case extendedKinds[word]:
			return KindUnknown
		}
		return KindUnknown
	}
	return KindUnknown
}
