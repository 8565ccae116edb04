package parse

import (
	"strings"

	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/graph"
)

// arrow is one recognized message arrow form. splitMessage picks the
// earliest match and breaks ties toward the longer token, so "-->>" is not
// misread as "-->" plus ">".
type arrow struct {
	token  string
	style  graph.EdgeStyle
	twoWay bool
}

var sequenceArrows = []arrow{
	{token: "<<-->>", style: graph.StyleDashed, twoWay: true},
	{token: "<<->>", style: graph.StyleSolid, twoWay: true},
	{token: "-->>", style: graph.StyleDashed},
	{token: "->>", style: graph.StyleSolid},
	{token: "--x", style: graph.StyleDashed},
	{token: "-x", style: graph.StyleSolid},
	{token: "-->", style: graph.StyleDashed},
	{token: "->", style: graph.StyleSolid},
}

// parseSequence parses the sequence sub-kind.
//
// Lanes are created in first-appearance order, whether a participant is
// declared explicitly or first seen in a message. Each message appends an
// edge with an auto-incrementing sequence index, preserving temporal order
// regardless of declaration order in the text.
func parseSequence(lines []string) (*graph.Graph, error) {
	g := graph.New(diagram.KindSequence)
	seq := 0

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if skippable(line) || strings.EqualFold(line, "sequenceDiagram") {
			continue
		}
		if strings.EqualFold(line, "autonumber") {
			continue
		}

		if rest, ok := cutKeyword(line, "participant"); ok {
			if err := declareLane(g, rest, i); err != nil {
				return nil, err
			}
			continue
		}
		if rest, ok := cutKeyword(line, "actor"); ok {
			if err := declareLane(g, rest, i); err != nil {
				return nil, err
			}
			continue
		}

		from, to, label, arr, ok := splitMessage(line)
		if !ok {
			return nil, errAt(i+1, line, `a participant declaration or a message like "A ->> B: text"`)
		}
		if from == "" || to == "" {
			return nil, errAt(i+1, line, "participant names on both sides of the arrow")
		}

		if _, err := g.EnsureLane(from); err != nil {
			return nil, errAt(i+1, line, "a valid participant name")
		}
		if _, err := g.EnsureLane(to); err != nil {
			return nil, errAt(i+1, line, "a valid participant name")
		}

		dir := graph.OneWay
		if arr.twoWay {
			dir = graph.TwoWay
		}
		// Endpoints were just ensured, so AddEdge cannot fail here.
		_ = g.AddEdge(from, to, graph.Edge{Label: label, Style: arr.style, Dir: dir, Seq: seq})
		seq++
	}

	return g, nil
}

// declareLane handles "participant Name" / "actor Name" lines. A mermaid
// "as Alias" suffix is tolerated; messages reference the name, so the alias
// is dropped.
func declareLane(g *graph.Graph, rest string, lineIdx int) error {
	name := strings.TrimSpace(rest)
	if before, _, ok := strings.Cut(name, " as "); ok {
		name = strings.TrimSpace(before)
	}
	if name == "" {
		return errAt(lineIdx+1, rest, "a participant name")
	}
	_, err := g.EnsureLane(name)
	if err != nil {
		return errAt(lineIdx+1, rest, "a unique participant name")
	}
	return nil
}

// splitMessage finds the arrow token and splits a message line into
// (from, to, label, arrow). The earliest token in the line wins, so an
// arrow-like sequence inside the label text never splits the message;
// on a position tie the longer token is taken.
func splitMessage(line string) (from, to, label string, arr arrow, ok bool) {
	best := -1
	for _, a := range sequenceArrows {
		idx := strings.Index(line, a.token)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best || (idx == best && len(a.token) > len(arr.token)) {
			best, arr = idx, a
		}
	}
	if best < 0 {
		return "", "", "", arrow{}, false
	}

	from = strings.TrimSpace(line[:best])
	rest := strings.TrimSpace(line[best+len(arr.token):])
	if target, msg, found := strings.Cut(rest, ":"); found {
		to = strings.TrimSpace(target)
		label = strings.TrimSpace(msg)
	} else {
		to = rest
	}
	return from, to, label, arr, true
}

func cutKeyword(line, keyword string) (rest string, ok bool) {
	if len(line) > len(keyword) && strings.EqualFold(line[:len(keyword)], keyword) &&
		(line[len(keyword)] == ' ' || line[len(keyword)] == '\t') {
		return line[len(keyword)+1:], true
	}
	return "", false
}
