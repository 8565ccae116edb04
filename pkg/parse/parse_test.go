package parse

import (
	"errors"
	"strings"
	"testing"

	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/graph"
)

func parseText(t *testing.T, kind diagram.SubKind, text string) *graph.Graph {
	t.Helper()
	g, err := Parse(diagram.Source{Text: text, Kind: kind}, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return g
}

func TestParseSequence(t *testing.T) {
	g := parseText(t, diagram.KindSequence, `sequenceDiagram
  participant Alice
  participant Bob as B
  Alice->>Bob: Hello
  Bob-->>Alice: Hi back
  Alice->>Alice: think`)

	if g.NodeCount() != 2 {
		t.Fatalf("node count = %d, want 2", g.NodeCount())
	}
	if g.EdgeCount() != 3 {
		t.Fatalf("edge count = %d, want 3", g.EdgeCount())
	}

	// Lane order follows first appearance.
	lanes := g.Lanes()
	if g.Node(lanes[0]).ID != "Alice" || g.Node(lanes[1]).ID != "Bob" {
		t.Errorf("lane order = %s, %s", g.Node(lanes[0]).ID, g.Node(lanes[1]).ID)
	}

	edges := g.Edges()
	if edges[0].Label != "Hello" || edges[0].Style != graph.StyleSolid {
		t.Errorf("edge 0 = %+v", edges[0])
	}
	if edges[1].Style != graph.StyleDashed {
		t.Errorf("dashed reply style = %v", edges[1].Style)
	}
	for i, e := range edges {
		if e.Seq != i {
			t.Errorf("edge %d seq = %d", i, e.Seq)
		}
	}
	// Self message keeps both endpoints on one lane.
	if edges[2].From != edges[2].To {
		t.Errorf("self message endpoints differ: %d -> %d", edges[2].From, edges[2].To)
	}
}

func TestParseSequenceImplicitParticipants(t *testing.T) {
	g := parseText(t, diagram.KindSequence, "A->>B: one\nC->>A: two")
	if g.NodeCount() != 3 {
		t.Errorf("node count = %d, want 3", g.NodeCount())
	}
	lanes := g.Lanes()
	if g.Node(lanes[2]).ID != "C" {
		t.Errorf("third lane = %s, want C", g.Node(lanes[2]).ID)
	}
}

func TestParseSequenceTwoWay(t *testing.T) {
	g := parseText(t, diagram.KindSequence, "A<<->>B: sync")
	if g.Edges()[0].Dir != graph.TwoWay {
		t.Errorf("dir = %v, want TwoWay", g.Edges()[0].Dir)
	}
}

func TestParseSequenceArrowInLabel(t *testing.T) {
	// The first arrow on the line splits the message; "-x" inside the
	// label text stays part of the label.
	g := parseText(t, diagram.KindSequence, "A->B: retry -x fallback")

	if g.NodeCount() != 2 {
		t.Fatalf("node count = %d, want 2", g.NodeCount())
	}
	if _, ok := g.Lookup("B"); !ok {
		t.Error("participant B missing")
	}
	e := g.Edges()[0]
	if e.Label != "retry -x fallback" {
		t.Errorf("label = %q, want %q", e.Label, "retry -x fallback")
	}
}

func TestParseSequenceMalformed(t *testing.T) {
	_, err := Parse(diagram.Source{Text: "sequenceDiagram\nthis is not a message", Kind: diagram.KindSequence}, Options{})
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("Parse() error = %v, want *Error", err)
	}
	if perr.Line != 2 {
		t.Errorf("error line = %d, want 2", perr.Line)
	}
}

func TestParseFlowchart(t *testing.T) {
	g := parseText(t, diagram.KindFlow, `flowchart TD
  A[Start] --> B{Check}
  B -->|yes| C(Done)
  B -->|no| A`)

	if g.NodeCount() != 3 {
		t.Fatalf("node count = %d, want 3", g.NodeCount())
	}
	if g.EdgeCount() != 3 {
		t.Fatalf("edge count = %d, want 3", g.EdgeCount())
	}

	idx, _ := g.Lookup("B")
	if g.Node(idx).Kind != graph.KindDecision {
		t.Errorf("B kind = %v, want decision", g.Node(idx).Kind)
	}
	idx, _ = g.Lookup("C")
	if g.Node(idx).Kind != graph.KindRounded {
		t.Errorf("C kind = %v, want rounded", g.Node(idx).Kind)
	}

	if g.Edges()[1].Label != "yes" {
		t.Errorf("edge label = %q, want yes", g.Edges()[1].Label)
	}
}

func TestParseFlowchartChain(t *testing.T) {
	g := parseText(t, diagram.KindFlow, "graph LR\n  A --> B --> C")
	if g.EdgeCount() != 2 {
		t.Errorf("chain edge count = %d, want 2", g.EdgeCount())
	}
}

func TestParseFlowchartFirstShapeWins(t *testing.T) {
	g := parseText(t, diagram.KindFlow, "A{Decide} --> B\nA[Other] --> B")
	idx, _ := g.Lookup("A")
	if g.Node(idx).Kind != graph.KindDecision {
		t.Errorf("A kind = %v, want first-seen decision", g.Node(idx).Kind)
	}
	if g.Node(idx).Label[0] != "Decide" {
		t.Errorf("A label = %q, want first-seen", g.Node(idx).Label[0])
	}
}

func TestParseFlowchartUnclosedShape(t *testing.T) {
	if _, err := Parse(diagram.Source{Text: "A[Start --> B", Kind: diagram.KindFlow}, Options{}); err == nil {
		t.Error("Parse() accepted unclosed shape bracket")
	}
}

func TestParseClass(t *testing.T) {
	g := parseText(t, diagram.KindClass, `classDiagram
  class Animal {
    +name string
    +Speak()
  }
  class Dog
  Dog --|> Animal
  Dog --> Bone`)

	if g.NodeCount() != 3 {
		t.Fatalf("node count = %d, want 3", g.NodeCount())
	}

	idx, _ := g.Lookup("Animal")
	label := g.Node(idx).Label
	if len(label) != 3 || label[0] != "Animal" || label[1] != "+name string" {
		t.Errorf("Animal label = %v", label)
	}

	edges := g.Edges()
	if edges[0].Style != graph.StyleInherit {
		t.Errorf("inheritance style = %v", edges[0].Style)
	}
	if edges[1].Style != graph.StyleSolid {
		t.Errorf("association style = %v", edges[1].Style)
	}
	// Bone was auto-declared by the relationship line.
	if _, ok := g.Lookup("Bone"); !ok {
		t.Error("relationship endpoint Bone not declared")
	}
}

func TestParseClassReversedInheritance(t *testing.T) {
	g := parseText(t, diagram.KindClass, "Animal <|-- Dog")
	e := g.Edges()[0]
	if g.Node(e.From).ID != "Dog" || g.Node(e.To).ID != "Animal" {
		t.Errorf("reversed inheritance = %s -> %s, want Dog -> Animal",
			g.Node(e.From).ID, g.Node(e.To).ID)
	}
}

func TestParseClassMemberElision(t *testing.T) {
	var b strings.Builder
	b.WriteString("class Big {\n")
	for i := 0; i < 12; i++ {
		b.WriteString("  +field\n")
	}
	b.WriteString("}\n")

	g, err := Parse(diagram.Source{Text: b.String(), Kind: diagram.KindClass}, Options{MaxClassMembers: 3})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	idx, _ := g.Lookup("Big")
	label := g.Node(idx).Label
	// Name + 3 members + the elision line.
	if len(label) != 5 {
		t.Fatalf("label lines = %d, want 5: %v", len(label), label)
	}
	if label[4] != "+9 more" {
		t.Errorf("elision line = %q, want +9 more", label[4])
	}
}

func TestParseClassUnclosedBlock(t *testing.T) {
	if _, err := Parse(diagram.Source{Text: "class A {\n  +x", Kind: diagram.KindClass}, Options{}); err == nil {
		t.Error("Parse() accepted unclosed class block")
	}
}

func TestParseNodeEdgeStrict(t *testing.T) {
	g := parseText(t, diagram.KindNodeEdge, `server: Web Server { shape: rectangle }
db: Database { shape: oval }
gw: Gateway {
  shape: diamond
}
server -> db: query
gw <-> server`)

	if g.NodeCount() != 3 {
		t.Fatalf("node count = %d, want 3", g.NodeCount())
	}
	idx, _ := g.Lookup("db")
	if g.Node(idx).Kind != graph.KindRounded {
		t.Errorf("db kind = %v, want rounded", g.Node(idx).Kind)
	}
	idx, _ = g.Lookup("gw")
	if g.Node(idx).Kind != graph.KindDecision {
		t.Errorf("gw kind = %v, want decision", g.Node(idx).Kind)
	}

	edges := g.Edges()
	if edges[0].Label != "query" {
		t.Errorf("edge label = %q", edges[0].Label)
	}
	if edges[1].Dir != graph.TwoWay {
		t.Errorf("dir = %v, want TwoWay", edges[1].Dir)
	}
}

func TestParseNodeEdgeStrictUndeclaredEndpoint(t *testing.T) {
	_, err := Parse(diagram.Source{Text: "a: A\na -> missing", Kind: diagram.KindNodeEdge}, Options{})
	if err == nil {
		t.Error("strict parse accepted undeclared endpoint")
	}
}

func TestParseNodeEdgeLenient(t *testing.T) {
	// Unknown sub-kinds fall through to the lenient parser: junk lines are
	// skipped and connection endpoints are auto-declared.
	g := parseText(t, diagram.KindUnknown, `[garbage that parses nowhere]{
a -> b: go
c: Cache`)

	if g.NodeCount() != 3 {
		t.Errorf("node count = %d, want 3", g.NodeCount())
	}
	if g.EdgeCount() != 1 {
		t.Errorf("edge count = %d, want 1", g.EdgeCount())
	}
}

func TestParseSkipsCommentsAndBlanks(t *testing.T) {
	g := parseText(t, diagram.KindFlow, "%% comment\n\n# note\nA --> B")
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("counts = %d/%d, want 2/1", g.NodeCount(), g.EdgeCount())
	}
}
