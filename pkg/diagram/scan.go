package diagram

import "strings"

// ScanBlocks extracts every fenced code block from a markdown document and
// classifies it. Blocks with non-diagram tags are returned too, marked
// DialectUnsupported, so callers can leave them alone while still knowing
// their positions. An unterminated fence runs to the end of the document.
func ScanBlocks(content string) []Source {
	lines := strings.Split(content, "\n")

	var (
		blocks  []Source
		body    []string
		tag     string
		open    = -1
		inFence = false
	)

	flush := func(end int) {
		text := strings.Join(body, "\n")
		dialect, kind := Classify(tag, text)
		blocks = append(blocks, Source{
			Tag:     strings.ToLower(strings.TrimSpace(tag)),
			Text:    text,
			Line:    open,
			EndLine: end,
			Dialect: dialect,
			Kind:    kind,
		})
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			if inFence {
				body = append(body, line)
			}
			continue
		}
		if inFence {
			flush(i)
			inFence = false
			body = nil
			continue
		}
		inFence = true
		open = i
		tag = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	}
	if inFence {
		flush(len(lines) - 1)
	}
	return blocks
}

// Diagrams filters scanned blocks down to the renderable ones.
func Diagrams(blocks []Source) []Source {
	var out []Source
	for _, b := range blocks {
		if b.Renderable() {
			out = append(out, b)
		}
	}
	return out
}
