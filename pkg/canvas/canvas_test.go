package canvas

import (
	"errors"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/graph"
	"github.com/asciidiag/asciidiag/pkg/layout"
)

func renderFlow(t *testing.T, build func(*graph.Graph)) *Artifact {
	t.Helper()
	g := graph.New(diagram.KindFlow)
	build(g)
	gr, err := layout.Compute(g, 1.0, layout.Options{})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	a, err := Render(g, gr, diagram.DialectMermaid, 1.0, Limits{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return a
}

func TestRenderRectangular(t *testing.T) {
	a := renderFlow(t, func(g *graph.Graph) {
		mustEnsure(t, g, "A", "Start", graph.KindProcess)
		mustEnsure(t, g, "B", "Finish line", graph.KindProcess)
		mustEdge(t, g, "A", "B", graph.Edge{Seq: -1})
	})

	if a.Height != len(a.Lines) {
		t.Errorf("Height = %d, lines = %d", a.Height, len(a.Lines))
	}
	for i, line := range a.Lines {
		if w := runewidth.StringWidth(line); w != a.Width {
			t.Errorf("line %d width = %d, want %d", i, w, a.Width)
		}
	}
	if a.Tool != "internal" {
		t.Errorf("tool = %q, want internal", a.Tool)
	}
}

func TestRenderBoxAndArrow(t *testing.T) {
	a := renderFlow(t, func(g *graph.Graph) {
		mustEnsure(t, g, "A", "Start", graph.KindProcess)
		mustEnsure(t, g, "B", "End", graph.KindProcess)
		mustEdge(t, g, "A", "B", graph.Edge{Seq: -1})
	})

	text := a.Text()
	for _, want := range []string{"Start", "End", "┌", "┘", "▼", "│"} {
		if !strings.Contains(text, want) {
			t.Errorf("rendering missing %q:\n%s", want, text)
		}
	}
}

func TestRenderNodeShapes(t *testing.T) {
	a := renderFlow(t, func(g *graph.Graph) {
		mustEnsure(t, g, "R", "Round", graph.KindRounded)
		mustEnsure(t, g, "D", "Choose", graph.KindDecision)
		mustEdge(t, g, "R", "D", graph.Edge{Seq: -1})
	})

	text := a.Text()
	for _, want := range []string{"╭", "╯", "╱", "╲"} {
		if !strings.Contains(text, want) {
			t.Errorf("rendering missing shape glyph %q:\n%s", want, text)
		}
	}
}

func TestRenderDashedEdge(t *testing.T) {
	g := graph.New(diagram.KindSequence)
	mustLane(t, g, "A")
	mustLane(t, g, "B")
	mustEdge(t, g, "A", "B", graph.Edge{Label: "retry", Style: graph.StyleDashed, Seq: 0})

	gr, err := layout.Compute(g, 1.0, layout.Options{})
	if err != nil {
		t.Fatal(err)
	}
	a, err := Render(g, gr, diagram.DialectMermaid, 1.0, Limits{})
	if err != nil {
		t.Fatal(err)
	}

	text := a.Text()
	if !strings.Contains(text, "╌") {
		t.Errorf("dashed edge missing dashed glyph:\n%s", text)
	}
	if !strings.Contains(text, "retry") {
		t.Errorf("edge label missing:\n%s", text)
	}
	if !strings.Contains(text, "▶") {
		t.Errorf("rightward arrow missing:\n%s", text)
	}
}

func TestRenderTwoWayArrow(t *testing.T) {
	g := graph.New(diagram.KindSequence)
	mustLane(t, g, "A")
	mustLane(t, g, "B")
	mustEdge(t, g, "A", "B", graph.Edge{Dir: graph.TwoWay, Seq: 0})

	gr, err := layout.Compute(g, 1.0, layout.Options{})
	if err != nil {
		t.Fatal(err)
	}
	a, err := Render(g, gr, diagram.DialectMermaid, 1.0, Limits{})
	if err != nil {
		t.Fatal(err)
	}

	text := a.Text()
	if !strings.Contains(text, "▶") || !strings.Contains(text, "◀") {
		t.Errorf("two-way edge should carry tips at both ends:\n%s", text)
	}
}

func TestRenderSequenceLifelines(t *testing.T) {
	g := graph.New(diagram.KindSequence)
	mustLane(t, g, "Alice")
	mustLane(t, g, "Bob")
	mustEdge(t, g, "Alice", "Bob", graph.Edge{Label: "hi", Seq: 0})
	mustEdge(t, g, "Bob", "Alice", graph.Edge{Label: "yo", Seq: 1})

	gr, err := layout.Compute(g, 1.0, layout.Options{})
	if err != nil {
		t.Fatal(err)
	}
	a, err := Render(g, gr, diagram.DialectMermaid, 1.0, Limits{})
	if err != nil {
		t.Fatal(err)
	}

	text := a.Text()
	if !strings.Contains(text, "Alice") || !strings.Contains(text, "Bob") {
		t.Fatalf("actor names missing:\n%s", text)
	}
	// Lifelines cross the message rows, so crossings merge.
	if !strings.Contains(text, "┼") {
		t.Errorf("lifeline crossing not merged:\n%s", text)
	}
}

func TestRenderTooLarge(t *testing.T) {
	a := graph.New(diagram.KindFlow)
	mustEnsure(t, a, "A", "with a rather long label", graph.KindProcess)
	gr, err := layout.Compute(a, 1.0, layout.Options{})
	if err != nil {
		t.Fatal(err)
	}

	_, err = Render(a, gr, diagram.DialectMermaid, 1.0, Limits{MaxWidth: 5, MaxHeight: 5})
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Render() error = %v, want ErrTooLarge", err)
	}
}

func TestRenderLabelTruncation(t *testing.T) {
	a := renderFlow(t, func(g *graph.Graph) {
		long := strings.Repeat("word ", 30)
		mustEnsure(t, g, "A", long, graph.KindProcess)
	})

	if !strings.Contains(a.Text(), "…") {
		t.Errorf("overflowing label should be cut with an ellipsis:\n%s", a.Text())
	}
}

func TestRenderWideRunes(t *testing.T) {
	a := renderFlow(t, func(g *graph.Graph) {
		mustEnsure(t, g, "A", "日本語", graph.KindProcess)
	})

	for i, line := range a.Lines {
		if w := runewidth.StringWidth(line); w != a.Width {
			t.Errorf("line %d display width = %d, want %d", i, w, a.Width)
		}
	}
	if !strings.Contains(a.Text(), "日本語") {
		t.Error("wide-rune label missing")
	}
}

func TestFromLinesPads(t *testing.T) {
	a := FromLines([]string{"ab", "a"}, diagram.DialectD2, diagram.KindNodeEdge, 1.0, "d2")
	if a.Width != 2 || a.Height != 2 {
		t.Fatalf("size = %dx%d, want 2x2", a.Width, a.Height)
	}
	if a.Lines[1] != "a " {
		t.Errorf("short line not padded: %q", a.Lines[1])
	}
	if a.Tool != "d2" {
		t.Errorf("tool = %q", a.Tool)
	}
}

func TestPlaceholder(t *testing.T) {
	a := Placeholder(diagram.DialectMermaid, diagram.KindFlow, "parse error at line 2\ncheck the arrow syntax")

	if a.Tool != "placeholder" {
		t.Errorf("tool = %q, want placeholder", a.Tool)
	}
	if len(a.Lines) != 4 {
		t.Fatalf("placeholder lines = %d, want 4", len(a.Lines))
	}
	if !strings.HasPrefix(a.Lines[0], "┌") || !strings.HasPrefix(a.Lines[3], "└") {
		t.Errorf("placeholder border missing:\n%s", a.Text())
	}
	if !strings.Contains(a.Text(), "parse error at line 2") {
		t.Errorf("message missing:\n%s", a.Text())
	}
	for i, line := range a.Lines {
		if w := runewidth.StringWidth(line); w != a.Width {
			t.Errorf("line %d width = %d, want %d", i, w, a.Width)
		}
	}
}

func mustEnsure(t *testing.T, g *graph.Graph, id, label string, kind graph.NodeKind) {
	t.Helper()
	if _, err := g.Ensure(id, []string{label}, kind); err != nil {
		t.Fatal(err)
	}
}

func mustLane(t *testing.T, g *graph.Graph, id string) {
	t.Helper()
	if _, err := g.EnsureLane(id); err != nil {
		t.Fatal(err)
	}
}

func mustEdge(t *testing.T, g *graph.Graph, from, to string, e graph.Edge) {
	t.Helper()
	if err := g.AddEdge(from, to, e); err != nil {
		t.Fatal(err)
	}
}
