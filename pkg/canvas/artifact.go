package canvas

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/asciidiag/asciidiag/pkg/diagram"
)

// Artifact is a finished text rendering of one diagram: an ordered sequence
// of equal-length lines plus metadata. Artifacts are immutable and safe to
// cache and share.
type Artifact struct {
	Lines   []string
	Dialect diagram.Dialect
	Kind    diagram.SubKind
	Zoom    float64
	Width   int // display width of every line
	Height  int // number of lines

	// Tool names the renderer that produced the artifact: "internal" for
	// the builtin pipeline, otherwise the external command name.
	Tool string

	// Rescalable marks artifacts that can be rescaled without re-invoking
	// their producer (image-backed external output). Text output is not.
	Rescalable bool
}

// Text joins the artifact lines with newlines.
func (a *Artifact) Text() string {
	return strings.Join(a.Lines, "\n")
}

// FromLines builds an artifact from raw lines, right-padding them to a
// uniform display width so the result is rectangular.
func FromLines(lines []string, dialect diagram.Dialect, kind diagram.SubKind, zoom float64, tool string) *Artifact {
	width := 0
	for _, l := range lines {
		if w := runewidth.StringWidth(l); w > width {
			width = w
		}
	}
	padded := make([]string, len(lines))
	for i, l := range lines {
		padded[i] = l + strings.Repeat(" ", width-runewidth.StringWidth(l))
	}
	return &Artifact{
		Lines:   padded,
		Dialect: dialect,
		Kind:    kind,
		Zoom:    zoom,
		Width:   width,
		Height:  len(padded),
		Tool:    tool,
	}
}

// CodeBlock builds a bordered artifact showing the block source verbatim.
// Math blocks fall back to this when no external renderer is installed, so
// the expression is at least readable in place.
func CodeBlock(dialect diagram.Dialect, kind diagram.SubKind, text string) *Artifact {
	body := strings.Split(strings.TrimRight(text, "\n"), "\n")

	width := 0
	for _, l := range body {
		if w := runewidth.StringWidth(l); w > width {
			width = w
		}
	}

	lines := make([]string, 0, len(body)+2)
	lines = append(lines, "┌"+strings.Repeat("─", width+2)+"┐")
	for _, l := range body {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(l))
		lines = append(lines, "│ "+l+pad+" │")
	}
	lines = append(lines, "└"+strings.Repeat("─", width+2)+"┘")
	return FromLines(lines, dialect, kind, 1.0, "internal")
}

// Placeholder builds a bordered artifact carrying a message, used when a
// block cannot be rendered (parse failure, oversized canvas). The viewer
// always gets something rectangular to show.
func Placeholder(dialect diagram.Dialect, kind diagram.SubKind, msg string) *Artifact {
	const maxWidth = 72
	var body []string
	for _, line := range strings.Split(msg, "\n") {
		for runewidth.StringWidth(line) > maxWidth {
			head := runewidth.Truncate(line, maxWidth, "")
			body = append(body, head)
			line = line[len(head):]
		}
		body = append(body, line)
	}

	width := 0
	for _, l := range body {
		if w := runewidth.StringWidth(l); w > width {
			width = w
		}
	}

	lines := make([]string, 0, len(body)+2)
	lines = append(lines, "┌"+strings.Repeat("─", width+2)+"┐")
	for _, l := range body {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(l))
		lines = append(lines, "│ "+l+pad+" │")
	}
	lines = append(lines, "└"+strings.Repeat("─", width+2)+"┘")
	return FromLines(lines, dialect, kind, 1.0, "placeholder")
}
