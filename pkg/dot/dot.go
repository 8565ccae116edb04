// Package dot exports diagram graphs to Graphviz DOT and renders them to
// SVG. This backs the export command for users who want a scalable image of
// a diagram next to its terminal rendering.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/asciidiag/asciidiag/pkg/graph"
)

// ToDOT converts a diagram graph to Graphviz DOT format.
// Node shape hints map to the closest Graphviz shapes; dashed and two-way
// edges keep their style and direction.
func ToDOT(g *graph.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := nodeAttrs(n)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		attrs := edgeAttrs(e, g)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", g.Node(e.From).ID, g.Node(e.To).ID)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", g.Node(e.From).ID, g.Node(e.To).ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n graph.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", strings.Join(n.Label, "\n"))}
	switch n.Kind {
	case graph.KindDecision:
		attrs = append(attrs, "shape=diamond")
	case graph.KindRounded:
		attrs = append(attrs, "style=\"rounded,filled\"")
	case graph.KindActor:
		attrs = append(attrs, "shape=ellipse")
	case graph.KindClass:
		attrs = append(attrs, "shape=record")
	}
	return attrs
}

func edgeAttrs(e graph.Edge, g *graph.Graph) []string {
	var attrs []string
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	if e.Style == graph.StyleDashed || e.Style == graph.StyleInherit {
		attrs = append(attrs, "style=dashed")
	}
	if e.Style == graph.StyleInherit {
		attrs = append(attrs, "arrowhead=empty")
	}
	if e.Dir == graph.TwoWay {
		attrs = append(attrs, "dir=both")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
