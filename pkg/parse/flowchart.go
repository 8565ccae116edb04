package parse

import (
	"strings"

	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/graph"
)

// shape brackets recognized in flowchart node references.
var flowShapes = []struct {
	open, close string
	kind        graph.NodeKind
}{
	{"{", "}", graph.KindDecision},
	{"(", ")", graph.KindRounded},
	{"[", "]", graph.KindProcess},
}

// parseFlowchart parses the flowchart sub-kind.
//
// Node references may appear standalone or inline on either side of an edge;
// nodes are deduplicated by id across the whole source and the first-seen
// shape and label win. Edge labels use the "A -->|label| B" form. Chains
// like "A --> B --> C" produce one edge per arrow.
func parseFlowchart(lines []string) (*graph.Graph, error) {
	g := graph.New(diagram.KindFlow)

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if skippable(line) {
			continue
		}
		word := strings.ToLower(firstField(line))
		if word == "flowchart" || word == "graph" {
			continue
		}

		if !strings.Contains(line, "-->") {
			// Standalone node declaration.
			if _, err := ensureFlowNode(g, line, i); err != nil {
				return nil, err
			}
			continue
		}

		segments := strings.Split(line, "-->")
		prev, err := ensureFlowNode(g, segments[0], i)
		if err != nil {
			return nil, err
		}
		for _, seg := range segments[1:] {
			seg = strings.TrimSpace(seg)

			var label string
			if strings.HasPrefix(seg, "|") {
				end := strings.Index(seg[1:], "|")
				if end < 0 {
					return nil, errAt(i+1, line, `a closing "|" after the edge label`)
				}
				label = strings.TrimSpace(seg[1 : end+1])
				seg = strings.TrimSpace(seg[end+2:])
			}

			next, err := ensureFlowNode(g, seg, i)
			if err != nil {
				return nil, err
			}
			_ = g.AddEdge(prev, next, graph.Edge{Label: label, Style: graph.StyleSolid, Seq: -1})
			prev = next
		}
	}

	return g, nil
}

// ensureFlowNode parses a node reference with an optional shape bracket and
// registers it, returning the node id. "B{Check}" yields id "B", label
// "Check", decision kind; a bare "B" yields a process rectangle labeled "B".
func ensureFlowNode(g *graph.Graph, ref string, lineIdx int) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errAt(lineIdx+1, ref, "a node reference")
	}

	for _, s := range flowShapes {
		open := strings.Index(ref, s.open)
		if open <= 0 {
			continue
		}
		if !strings.HasSuffix(ref, s.close) {
			return "", errAt(lineIdx+1, ref, `a closing "`+s.close+`" on the node shape`)
		}
		id := strings.TrimSpace(ref[:open])
		label := ref[open+1 : len(ref)-1]
		if _, err := g.Ensure(id, []string{label}, s.kind); err != nil {
			return "", errAt(lineIdx+1, ref, "a non-empty node id")
		}
		return id, nil
	}

	if strings.ContainsAny(ref, "]})|") {
		return "", errAt(lineIdx+1, ref, "a node id with a matched shape bracket")
	}
	if _, err := g.Ensure(ref, []string{ref}, graph.KindProcess); err != nil {
		return "", errAt(lineIdx+1, ref, "a non-empty node id")
	}
	return ref, nil
}

func firstField(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
