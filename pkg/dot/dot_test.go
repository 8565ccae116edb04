package dot

import (
	"strings"
	"testing"

	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/graph"
)

func buildGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New(diagram.KindFlow)
	if _, err := g.Ensure("A", []string{"Start"}, graph.KindProcess); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Ensure("B", []string{"Check"}, graph.KindDecision); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("A", "B", graph.Edge{Label: "go", Style: graph.StyleDashed, Dir: graph.TwoWay}); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(buildGraph(t))

	for _, want := range []string{
		"digraph G {",
		`"A" [label="Start"]`,
		"shape=diamond",
		`"A" -> "B"`,
		`label="go"`,
		"style=dashed",
		"dir=both",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTInheritance(t *testing.T) {
	g := graph.New(diagram.KindClass)
	_, _ = g.Ensure("Dog", []string{"Dog"}, graph.KindClass)
	_, _ = g.Ensure("Animal", []string{"Animal"}, graph.KindClass)
	if err := g.AddEdge("Dog", "Animal", graph.Edge{Style: graph.StyleInherit}); err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(g)
	if !strings.Contains(dot, "arrowhead=empty") {
		t.Errorf("inheritance should use empty arrowhead:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(buildGraph(t)))
	if err != nil {
		t.Fatalf("RenderSVG error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("output should be SVG")
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if _, err := RenderSVG("not dot at all {{{"); err == nil {
		t.Error("invalid DOT should error")
	}
}
