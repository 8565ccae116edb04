package parse

import (
	"fmt"
	"strings"

	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/graph"
)

// shapeKinds maps node-edge "shape:" attribute values onto node kinds.
// Unrecognized values fall back to a generic box.
var shapeKinds = map[string]graph.NodeKind{
	"rectangle": graph.KindProcess,
	"square":    graph.KindProcess,
	"diamond":   graph.KindDecision,
	"decision":  graph.KindDecision,
	"oval":      graph.KindRounded,
	"circle":    graph.KindRounded,
	"person":    graph.KindActor,
}

// parseNodeEdge parses the node-edge dialect.
//
// Declarations are "Id: Label" with an optional "{ key: value; ... }"
// attribute block, which may also span multiple lines. Unknown attribute
// keys are ignored for forward compatibility; unbalanced braces are an
// error. Connections are "A -> B: Label" or "A <-> B: Label".
//
// In strict mode (the d2 dialect proper) a connection endpoint must be
// declared, and any unparsable line aborts the parse. In lenient mode (the
// best-effort path for unrecognized sub-kinds) endpoints are auto-declared
// and unparsable lines are skipped.
func parseNodeEdge(lines []string, strict bool) (*graph.Graph, error) {
	g := graph.New(diagram.KindNodeEdge)

	type pendingEdge struct {
		from, to, label string
		dir             graph.Direction
		line            int
		text            string
	}
	var edges []pendingEdge

	inAttrs := false
	var attrID, attrLabel string
	var attrLines []string
	var attrStart int

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if skippable(line) {
			continue
		}

		if inAttrs {
			if line == "}" {
				kind := kindFromAttrs(attrLines)
				if _, err := g.Ensure(attrID, []string{attrLabel}, kind); err != nil && strict {
					return nil, errAt(attrStart+1, attrID, "a non-empty node id")
				}
				inAttrs = false
				continue
			}
			if strings.ContainsAny(line, "{}") {
				return nil, errAt(i+1, line, `an attribute line or a closing "}"`)
			}
			attrLines = append(attrLines, line)
			continue
		}

		if from, to, label, dir, ok := splitConnection(line); ok {
			edges = append(edges, pendingEdge{from: from, to: to, label: label, dir: dir, line: i + 1, text: line})
			continue
		}

		id, label, attrs, open, err := splitDeclaration(line, i)
		if err != nil {
			if strict {
				return nil, err
			}
			continue
		}
		if open {
			inAttrs = true
			attrID, attrLabel = id, label
			attrLines = nil
			attrStart = i
			continue
		}
		if _, err := g.Ensure(id, []string{label}, kindFromAttrs(attrs)); err != nil && strict {
			return nil, errAt(i+1, line, "a non-empty node id")
		}
	}

	if inAttrs {
		return nil, errAt(attrStart+1, attrID+": "+attrLabel+" {", `a closing "}" before end of source`)
	}

	// Connections are resolved after all declarations so declaration order
	// does not matter, but node order stays first-appearance of declarations.
	for _, e := range edges {
		if strict {
			if _, ok := g.Lookup(e.from); !ok {
				return nil, errAt(e.line, e.text, fmt.Sprintf("a declaration for node %q", e.from))
			}
			if _, ok := g.Lookup(e.to); !ok {
				return nil, errAt(e.line, e.text, fmt.Sprintf("a declaration for node %q", e.to))
			}
		} else {
			_, _ = g.Ensure(e.from, []string{e.from}, graph.KindGeneric)
			_, _ = g.Ensure(e.to, []string{e.to}, graph.KindGeneric)
		}
		_ = g.AddEdge(e.from, e.to, graph.Edge{Label: e.label, Style: graph.StyleSolid, Dir: e.dir, Seq: -1})
	}

	return g, nil
}

// splitConnection recognizes "A -> B" and "A <-> B", with an optional
// ": Label" suffix on the target.
func splitConnection(line string) (from, to, label string, dir graph.Direction, ok bool) {
	token, dir := "<->", graph.TwoWay
	idx := strings.Index(line, token)
	if idx < 0 {
		token, dir = "->", graph.OneWay
		idx = strings.Index(line, token)
	}
	if idx <= 0 {
		return "", "", "", graph.OneWay, false
	}
	from = strings.TrimSpace(line[:idx])
	rest := strings.TrimSpace(line[idx+len(token):])
	if target, l, found := strings.Cut(rest, ":"); found {
		to = strings.TrimSpace(target)
		label = strings.TrimSpace(l)
	} else {
		to = rest
	}
	if from == "" || to == "" || strings.ContainsAny(from, "{}") || strings.ContainsAny(to, "{}") {
		return "", "", "", graph.OneWay, false
	}
	return from, to, label, dir, true
}

// splitDeclaration parses "Id", "Id: Label", "Id: Label { ... }" and
// "Id: Label {" (multi-line block opener). Returns open=true when the
// attribute block continues on following lines.
func splitDeclaration(line string, lineIdx int) (id, label string, attrs []string, open bool, err error) {
	id, rest, hasColon := strings.Cut(line, ":")
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "{}") {
		return "", "", nil, false, errAt(lineIdx+1, line, `a declaration "Id: Label" or a connection "A -> B"`)
	}
	if !hasColon {
		if strings.ContainsAny(id, " \t") {
			return "", "", nil, false, errAt(lineIdx+1, line, `a declaration "Id: Label" or a connection "A -> B"`)
		}
		return id, id, nil, false, nil
	}

	rest = strings.TrimSpace(rest)
	brace := strings.IndexByte(rest, '{')
	if brace < 0 {
		if strings.ContainsRune(rest, '}') {
			return "", "", nil, false, errAt(lineIdx+1, line, `an opening "{" before "}"`)
		}
		if rest == "" {
			rest = id
		}
		return id, rest, nil, false, nil
	}

	label = strings.TrimSpace(rest[:brace])
	if label == "" {
		label = id
	}
	body := strings.TrimSpace(rest[brace+1:])
	if body == "" {
		return id, label, nil, true, nil
	}
	if !strings.HasSuffix(body, "}") {
		return "", "", nil, false, errAt(lineIdx+1, line, `a closing "}" on the attribute block`)
	}
	body = strings.TrimSuffix(body, "}")
	if strings.ContainsAny(body, "{}") {
		return "", "", nil, false, errAt(lineIdx+1, line, "balanced braces in the attribute block")
	}
	for _, a := range strings.Split(body, ";") {
		if a = strings.TrimSpace(a); a != "" {
			attrs = append(attrs, a)
		}
	}
	return id, label, attrs, false, nil
}

// kindFromAttrs extracts the shape from attribute lines; unknown keys are
// ignored rather than erroring.
func kindFromAttrs(attrs []string) graph.NodeKind {
	for _, a := range attrs {
		key, val, ok := strings.Cut(a, ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(strings.ToLower(key)) != "shape" {
			continue
		}
		if kind, ok := shapeKinds[strings.TrimSpace(strings.ToLower(val))]; ok {
			return kind
		}
	}
	return graph.KindGeneric
}
