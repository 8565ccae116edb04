package parse

import (
	"fmt"
	"strings"

	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/graph"
)

// parseClass parses the class sub-kind.
//
// "class Name { ... }" blocks declare one node per class with member lines
// folded into the label; beyond maxMembers a single "+N more" line elides
// the rest. Relationship lines become edges: "A --|> B" is inheritance,
// "A --> B" association. Relationship endpoints not declared by a class
// block are auto-declared with an empty member list.
func parseClass(lines []string, maxMembers int) (*graph.Graph, error) {
	g := graph.New(diagram.KindClass)

	inBlock := false
	var blockID string
	var members []string
	var blockStart int

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if skippable(line) || strings.EqualFold(line, "classDiagram") {
			continue
		}

		if inBlock {
			if line == "}" {
				if err := declareClass(g, blockID, members, maxMembers, blockStart); err != nil {
					return nil, err
				}
				inBlock = false
				continue
			}
			if strings.Contains(line, "{") || strings.Contains(line, "}") {
				return nil, errAt(i+1, line, `a member line or a closing "}"`)
			}
			members = append(members, line)
			continue
		}

		if rest, ok := cutKeyword(line, "class"); ok {
			name := strings.TrimSpace(rest)
			if open := strings.IndexByte(name, '{'); open >= 0 {
				id := strings.TrimSpace(name[:open])
				tail := strings.TrimSpace(name[open+1:])
				if strings.HasSuffix(tail, "}") {
					// One-line block: class Name { a; b }
					body := strings.TrimSuffix(tail, "}")
					var ms []string
					for _, m := range strings.Split(body, ";") {
						if m = strings.TrimSpace(m); m != "" {
							ms = append(ms, m)
						}
					}
					if err := declareClass(g, id, ms, maxMembers, i); err != nil {
						return nil, err
					}
					continue
				}
				if tail != "" {
					return nil, errAt(i+1, line, `nothing after "{"`)
				}
				inBlock = true
				blockID = id
				members = nil
				blockStart = i
				continue
			}
			if err := declareClass(g, name, nil, maxMembers, i); err != nil {
				return nil, err
			}
			continue
		}

		from, to, style, ok := splitRelation(line)
		if !ok {
			return nil, errAt(i+1, line, `a class declaration or a relationship like "A --> B"`)
		}
		if _, err := g.Ensure(from, []string{from}, graph.KindClass); err != nil {
			return nil, errAt(i+1, line, "a class name")
		}
		if _, err := g.Ensure(to, []string{to}, graph.KindClass); err != nil {
			return nil, errAt(i+1, line, "a class name")
		}
		_ = g.AddEdge(from, to, graph.Edge{Style: style, Seq: -1})
	}

	if inBlock {
		return nil, errAt(blockStart+1, "class "+blockID+" {", `a closing "}" before end of source`)
	}
	return g, nil
}

// declareClass registers a class node, folding members into the label with
// the "+N more" elision past the cap.
func declareClass(g *graph.Graph, id string, members []string, maxMembers, lineIdx int) error {
	if id == "" || strings.ContainsAny(id, " \t") {
		return errAt(lineIdx+1, id, "a single-word class name")
	}
	label := []string{id}
	if len(members) > maxMembers {
		hidden := len(members) - maxMembers
		members = append(members[:maxMembers:maxMembers], fmt.Sprintf("+%d more", hidden))
	}
	label = append(label, members...)
	if _, err := g.Ensure(id, label, graph.KindClass); err != nil {
		return errAt(lineIdx+1, id, "a unique class name")
	}
	return nil
}

// splitRelation recognizes "A --|> B" (inheritance) and "A --> B"
// (association). The inheritance token is checked first since "--|>"
// contains no "-->" but "<|--" reverses the endpoints.
func splitRelation(line string) (from, to string, style graph.EdgeStyle, ok bool) {
	if l, r, found := strings.Cut(line, "--|>"); found {
		return strings.TrimSpace(l), strings.TrimSpace(r), graph.StyleInherit, true
	}
	if l, r, found := strings.Cut(line, "<|--"); found {
		// Arrow points left: the right side is the subclass.
		return strings.TrimSpace(r), strings.TrimSpace(l), graph.StyleInherit, true
	}
	if l, r, found := strings.Cut(line, "-->"); found {
		return strings.TrimSpace(l), strings.TrimSpace(r), graph.StyleSolid, true
	}
	return "", "", graph.StyleSolid, false
}
