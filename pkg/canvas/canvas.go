// Package canvas turns a computed layout grid into box-drawing text.
//
// Rendering is the last pipeline stage and the only one with a size guard:
// a grid that exceeds the configured canvas bounds fails with ErrTooLarge
// rather than producing output no terminal could show. Rendering never
// changes box positions; labels that do not fit their box are truncated
// with an ellipsis instead.
package canvas

import (
	"errors"
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/graph"
	"github.com/asciidiag/asciidiag/pkg/layout"
)

// ErrTooLarge marks a diagram whose canvas exceeds the configured bounds.
// Zooming out usually resolves it.
var ErrTooLarge = errors.New("diagram too large to render at this zoom")

// Limits bounds the canvas size in cells. Zero values fall back to the
// shipped defaults.
type Limits struct {
	MaxWidth  int
	MaxHeight int
}

func (l Limits) withDefaults() Limits {
	if l.MaxWidth == 0 {
		l.MaxWidth = 4000
	}
	if l.MaxHeight == 0 {
		l.MaxHeight = 4000
	}
	return l
}

// margin is the blank border around the drawing.
const margin = 1

// Render paints the grid into an artifact. The node boxes, edge paths and
// labels come from the layout; Render only chooses glyphs.
func Render(g *graph.Graph, gr *layout.Grid, dialect diagram.Dialect, zoom float64, lim Limits) (*Artifact, error) {
	lim = lim.withDefaults()
	w := gr.Width + 2*margin
	h := gr.Height + 2*margin
	if w > lim.MaxWidth || h > lim.MaxHeight {
		return nil, fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrTooLarge, w, h, lim.MaxWidth, lim.MaxHeight)
	}

	buf := newBuffer(w, h)

	if gr.Kind == diagram.KindSequence {
		for _, col := range gr.LaneCols {
			for r := gr.LaneTop; r <= gr.LaneBot; r++ {
				buf.set(r, col, '│')
			}
		}
	}

	edges := g.Edges()
	for ei := range edges {
		buf.drawPath(gr.Paths[ei], edges[ei].Style)
	}
	for i := 0; i < g.NodeCount(); i++ {
		buf.drawBox(gr.Boxes[i], gr.NodeLines[i], g.Node(i).Kind)
	}
	for ei := range edges {
		buf.drawArrowheads(gr.Paths[ei], edges[ei].Dir)
	}
	for ei := range edges {
		anchor, ok := gr.Labels[ei]
		if !ok {
			continue
		}
		for i, line := range gr.LabelLines[ei] {
			buf.writeText(anchor.Row+i, anchor.Col, line, gr.Width)
		}
	}

	return FromLines(buf.lines(), dialect, gr.Kind, zoom, "internal"), nil
}

// buffer is the rune grid being painted. A zero rune marks the trailing
// half of a double-width rune and is skipped when serializing.
type buffer struct {
	cells [][]rune
	w, h  int
}

func newBuffer(w, h int) *buffer {
	cells := make([][]rune, h)
	for i := range cells {
		row := make([]rune, w)
		for j := range row {
			row[j] = ' '
		}
		cells[i] = row
	}
	return &buffer{cells: cells, w: w, h: h}
}

// set places a glyph, offsetting by the margin. Crossing line glyphs merge
// into '┼' so overlapping paths stay readable.
func (b *buffer) set(row, col int, r rune) {
	row += margin
	col += margin
	if row < 0 || row >= b.h || col < 0 || col >= b.w {
		return
	}
	old := b.cells[row][col]
	if (isVertical(old) && isHorizontal(r)) || (isHorizontal(old) && isVertical(r)) {
		r = '┼'
	}
	b.cells[row][col] = r
}

// put places a glyph unconditionally, without crossing merges.
func (b *buffer) put(row, col int, r rune) {
	row += margin
	col += margin
	if row < 0 || row >= b.h || col < 0 || col >= b.w {
		return
	}
	b.cells[row][col] = r
}

func isVertical(r rune) bool   { return r == '│' || r == '┆' }
func isHorizontal(r rune) bool { return r == '─' || r == '╌' }

// drawPath walks the cell path and picks a glyph per cell from the travel
// direction: straight runs, corners where the direction changes. The final
// cell is left for drawArrowheads.
func (b *buffer) drawPath(path []layout.Cell, style graph.EdgeStyle) {
	horiz, vert := '─', '│'
	if style == graph.StyleDashed || style == graph.StyleInherit {
		horiz, vert = '╌', '┆'
	}

	for i := 0; i < len(path)-1; i++ {
		cur := path[i]
		var toPrev, toNext layout.Cell
		if i > 0 {
			toPrev = delta(cur, path[i-1])
		} else {
			toPrev = delta(cur, path[i+1]) // endpoints extend the run
		}
		toNext = delta(cur, path[i+1])

		switch {
		case toPrev.Row == 0 && toNext.Row == 0:
			b.set(cur.Row, cur.Col, horiz)
		case toPrev.Col == 0 && toNext.Col == 0:
			b.set(cur.Row, cur.Col, vert)
		default:
			b.put(cur.Row, cur.Col, corner(toPrev, toNext))
		}
	}
}

// delta is the unit direction from a to b.
func delta(a, b layout.Cell) layout.Cell {
	return layout.Cell{Row: sign(b.Row - a.Row), Col: sign(b.Col - a.Col)}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// corner maps the two sides a bend touches to its glyph.
func corner(a, c layout.Cell) rune {
	up := a.Row < 0 || c.Row < 0
	left := a.Col < 0 || c.Col < 0
	switch {
	case up && left:
		return '┘'
	case up && !left:
		return '└'
	case !up && left:
		return '┐'
	}
	return '┌'
}

// drawArrowheads paints the tip at the last path cell, pointing along the
// final step, and a second tip at the first cell for two-way edges.
func (b *buffer) drawArrowheads(path []layout.Cell, dir graph.Direction) {
	if len(path) < 2 {
		return
	}
	last := path[len(path)-1]
	b.put(last.Row, last.Col, arrow(delta(path[len(path)-2], last)))
	if dir == graph.TwoWay {
		first := path[0]
		b.put(first.Row, first.Col, arrow(delta(path[1], first)))
	}
}

func arrow(d layout.Cell) rune {
	switch {
	case d.Col > 0:
		return '▶'
	case d.Col < 0:
		return '◀'
	case d.Row > 0:
		return '▼'
	}
	return '▲'
}

// drawBox paints a node: border, blank interior, then the label lines.
// Labels that exceed the interior are cut with an ellipsis; the box never
// grows to fit.
func (b *buffer) drawBox(box layout.Box, lines []string, kind graph.NodeKind) {
	if box.W < 2 || box.H < 2 {
		return
	}
	right := box.Col + box.W - 1
	bottom := box.Row + box.H - 1

	tl, tr, bl, br := corners(kind)
	b.put(box.Row, box.Col, tl)
	b.put(box.Row, right, tr)
	b.put(bottom, box.Col, bl)
	b.put(bottom, right, br)
	for c := box.Col + 1; c < right; c++ {
		b.put(box.Row, c, '─')
		b.put(bottom, c, '─')
	}
	for r := box.Row + 1; r < bottom; r++ {
		b.put(r, box.Col, '│')
		b.put(r, right, '│')
		for c := box.Col + 1; c < right; c++ {
			b.put(r, c, ' ')
		}
	}

	interior := box.W - 2
	visible := box.H - 2
	truncated := len(lines) > visible
	for i := 0; i < visible && i < len(lines); i++ {
		line := lines[i]
		if truncated && i == visible-1 {
			line = runewidth.Truncate(line, interior-2, "") + "…"
		}
		lw := runewidth.StringWidth(line)
		col := box.Col + 1 + (interior-lw)/2
		if kind == graph.KindClass && i > 0 {
			col = box.Col + 2 // class members read better left-aligned
		}
		b.writeText(box.Row+1+i, col, line, right)
	}
}

func corners(kind graph.NodeKind) (tl, tr, bl, br rune) {
	switch kind {
	case graph.KindRounded:
		return '╭', '╮', '╰', '╯'
	case graph.KindDecision:
		return '╱', '╲', '╲', '╱'
	}
	return '┌', '┐', '└', '┘'
}

// writeText writes a string rune by rune, honoring display widths so wide
// runes occupy two cells. Text past maxCol is cut with an ellipsis.
func (b *buffer) writeText(row, col int, s string, maxCol int) {
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > maxCol {
			b.put(row, col-1, '…')
			return
		}
		b.put(row, col, r)
		if rw == 2 {
			b.put(row, col+1, 0)
		}
		col += rw
	}
}

// lines serializes the buffer to strings, dropping wide-rune continuation
// cells and trailing blank padding per row.
func (b *buffer) lines() []string {
	out := make([]string, b.h)
	for i, row := range b.cells {
		line := make([]rune, 0, len(row))
		for _, r := range row {
			if r == 0 {
				continue
			}
			line = append(line, r)
		}
		out[i] = string(line)
	}
	return out
}
