package external

import "strings"

// MermaidToD2 converts basic mermaid source to d2 syntax. The conversion is
// intentionally rough: it carries over nodes, connections and message lines,
// which is enough for d2 to draw the structure. Lines it does not recognize
// are dropped.
func MermaidToD2(src string) string {
	lines := strings.Split(src, "\n")

	isSequence := false
	for _, line := range lines {
		if strings.Contains(line, "sequenceDiagram") {
			isSequence = true
			break
		}
	}

	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		if isHeader(line) {
			continue
		}

		if isSequence {
			if from, to, msg, ok := splitArrow(line); ok {
				out = append(out, from+" -> "+to+": "+msg)
			}
			continue
		}

		if strings.Contains(line, "-->") {
			parts := strings.SplitN(line, "-->", 2)
			from := stripShape(parts[0])
			to := parts[1]
			// Drop |label| edge annotations; d2 edge labels use a
			// different syntax and structure matters more here.
			if strings.HasPrefix(strings.TrimSpace(to), "|") {
				if i := strings.Index(strings.TrimSpace(to)[1:], "|"); i >= 0 {
					to = strings.TrimSpace(to)[i+2:]
				}
			}
			out = append(out, stripShape(from)+" -> "+stripShape(to))
			continue
		}
		if id, label, ok := splitDeclaration(line); ok {
			out = append(out, id+": "+label)
		}
	}

	if len(out) == 0 {
		return src
	}
	return strings.Join(out, "\n")
}

// MermaidToDiagon converts a mermaid sequence body to diagon's sequence
// syntax: participant declarations go away and every arrow becomes "->".
func MermaidToDiagon(src string) string {
	var out []string
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%%") || isHeader(line) {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "participant ") || strings.HasPrefix(lower, "actor ") {
			continue
		}
		if from, to, msg, ok := splitArrow(line); ok {
			out = append(out, from+" -> "+to+": "+msg)
		}
	}
	if len(out) == 0 {
		return src
	}
	return strings.Join(out, "\n")
}

func isHeader(line string) bool {
	for _, h := range []string{"sequenceDiagram", "flowchart", "graph", "classDiagram"} {
		if strings.HasPrefix(line, h) {
			return true
		}
	}
	return false
}

// splitArrow breaks "A ->> B: msg" into its parts, accepting the common
// mermaid arrow spellings.
func splitArrow(line string) (from, to, msg string, ok bool) {
	for _, arrow := range []string{"-->>", "->>", "-->", "->"} {
		i := strings.Index(line, arrow)
		if i < 0 {
			continue
		}
		from = strings.TrimSpace(line[:i])
		rest := strings.TrimSpace(line[i+len(arrow):])
		to, msg, _ = strings.Cut(rest, ":")
		return from, strings.TrimSpace(to), strings.TrimSpace(msg), from != "" && strings.TrimSpace(to) != ""
	}
	return "", "", "", false
}

// splitDeclaration breaks "Id[Label]" into id and label.
func splitDeclaration(line string) (id, label string, ok bool) {
	open := strings.Index(line, "[")
	close := strings.LastIndex(line, "]")
	if open <= 0 || close < open {
		return "", "", false
	}
	return strings.TrimSpace(line[:open]), line[open+1 : close], true
}

// stripShape removes mermaid shape brackets from a node reference, keeping
// just the identifier.
func stripShape(s string) string {
	s = strings.TrimSpace(s)
	for _, open := range []string{"[", "(", "{"} {
		if i := strings.Index(s, open); i > 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
