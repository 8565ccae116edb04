// Package layout assigns integer grid coordinates to a diagram graph.
//
// Compute is deterministic and pure: the same (graph, zoom) pair always
// produces the same grid, and re-layout at a different zoom preserves the
// relative left-to-right and top-to-bottom ordering of nodes. All tie-breaks
// are first-appearance order in source, never alphabetical, so positions are
// stable across re-renders.
//
// Layout never fails for a structurally valid graph: disconnected components
// are stacked below the main layout, cycles become side-channel back edges.
// Oversized output is caught later by the canvas, not here.
package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/graph"
)

// Zoom bounds. Requested factors are clamped, never rejected.
const (
	MinZoom = 0.25
	MaxZoom = 3.0
)

// ClampZoom clamps a requested zoom factor to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// Box is a node's bounding box in grid cells. Row/Col is the top-left
// corner; W and H include the border.
type Box struct {
	Row, Col int
	W, H     int
}

func (b Box) right() int  { return b.Col + b.W - 1 }
func (b Box) bottom() int { return b.Row + b.H - 1 }

// Cell is one grid position on an edge path.
type Cell struct {
	Row, Col int
}

// Grid maps every node to a bounding box and every edge to an ordered path
// of cells. Paths may share cells only where they share endpoints; node
// boxes never overlap.
type Grid struct {
	Kind diagram.SubKind

	Boxes      map[int]Box      // node index → bounding box
	NodeLines  map[int][]string // node index → wrapped label lines
	Paths      map[int][]Cell   // edge index → path, last cell is the arrow tip
	Labels     map[int]Cell     // edge index → label top-left, where placed
	LabelLines map[int][]string // edge index → wrapped label lines

	// Sequence extras: lifeline columns per lane and their vertical extent.
	LaneCols []int
	LaneTop  int
	LaneBot  int

	Width  int // rightmost occupied column + 1
	Height int // bottommost occupied row + 1
}

func newGrid(kind diagram.SubKind) *Grid {
	return &Grid{
		Kind:       kind,
		Boxes:      make(map[int]Box),
		NodeLines:  make(map[int][]string),
		Paths:      make(map[int][]Cell),
		Labels:     make(map[int]Cell),
		LabelLines: make(map[int][]string),
	}
}

// Options carries the layout tunables from configuration. Zero values fall
// back to the shipped defaults.
type Options struct {
	MinLaneWidth   int
	LaneGap        int
	ClassRowBudget int
}

func (o Options) withDefaults() Options {
	if o.MinLaneWidth == 0 {
		o.MinLaneWidth = 12
	}
	if o.LaneGap == 0 {
		o.LaneGap = 3
	}
	if o.ClassRowBudget == 0 {
		o.ClassRowBudget = 100
	}
	return o
}

// scaler applies the zoom factor to base cell dimensions.
type scaler struct{ zoom float64 }

// dim scales a cell count, never below 1.
func (s scaler) dim(n int) int {
	v := int(float64(n)*s.zoom + 0.5)
	if v < 1 {
		return 1
	}
	return v
}

// wrapWidth is the label wrap budget inside node boxes at this zoom.
func (s scaler) wrapWidth() int { return s.dim(16) }

// maxLabelLines caps box interior height; longer labels are truncated by the
// canvas instead of resizing the box, which would cascade into the layout.
func (s scaler) maxLabelLines() int { return s.dim(4) }

func (s scaler) hgap() int { return s.dim(4) }
func (s scaler) vgap() int { return s.dim(2) }

// Compute lays out a graph at the given zoom factor.
// The zoom is clamped to [MinZoom, MaxZoom] before use.
func Compute(g *graph.Graph, zoom float64, opts Options) (*Grid, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	s := scaler{zoom: ClampZoom(zoom)}

	switch g.Kind {
	case diagram.KindSequence:
		return sequenceLayout(g, s, opts), nil
	case diagram.KindClass:
		return classLayout(g, s, opts), nil
	}
	// Flowchart and the generic node-edge dialect share the layered layout.
	return layeredLayout(g, s), nil
}

// wrapLabel wraps label lines to the given width, breaking on spaces and
// splitting words longer than the budget. Widths are display widths so wide
// runes wrap correctly.
func wrapLabel(lines []string, width int) []string {
	if width < 1 {
		width = 1
	}
	var out []string
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}

func wrapLine(line string, width int) []string {
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}

	var wrapped []string
	cur := ""
	for _, word := range strings.Fields(line) {
		for runewidth.StringWidth(word) > width {
			if cur != "" {
				wrapped = append(wrapped, cur)
				cur = ""
			}
			head := runewidth.Truncate(word, width, "")
			wrapped = append(wrapped, head)
			word = word[len(head):]
		}
		switch {
		case cur == "":
			cur = word
		case runewidth.StringWidth(cur)+1+runewidth.StringWidth(word) <= width:
			cur += " " + word
		default:
			wrapped = append(wrapped, cur)
			cur = word
		}
	}
	if cur != "" {
		wrapped = append(wrapped, cur)
	}
	if len(wrapped) == 0 {
		wrapped = []string{""}
	}
	return wrapped
}

// labelWidth is the widest display width among lines.
func labelWidth(lines []string) int {
	w := 0
	for _, l := range lines {
		if lw := runewidth.StringWidth(l); lw > w {
			w = lw
		}
	}
	return w
}

// boxFor sizes a node box from its wrapped label: one cell of border and one
// of padding per side, interior height capped at maxLines.
func boxFor(lines []string, maxLines int) (w, h int) {
	n := len(lines)
	if n > maxLines {
		n = maxLines
	}
	return labelWidth(lines) + 4, n + 2
}

// extend grows the grid extents to include the box or cell.
func (gr *Grid) extendBox(b Box) {
	if r := b.bottom() + 1; r > gr.Height {
		gr.Height = r
	}
	if c := b.right() + 1; c > gr.Width {
		gr.Width = c
	}
}

func (gr *Grid) extendCell(c Cell) {
	if c.Row+1 > gr.Height {
		gr.Height = c.Row + 1
	}
	if c.Col+1 > gr.Width {
		gr.Width = c.Col + 1
	}
}
