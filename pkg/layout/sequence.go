package layout

import (
	"github.com/mattn/go-runewidth"

	"github.com/asciidiag/asciidiag/pkg/graph"
)

// sequenceLayout assigns one fixed column per lane, ordered by first
// appearance, and one horizontal row band per message in strict sequence
// index order. Chronology always reads top to bottom.
func sequenceLayout(g *graph.Graph, s scaler, opts Options) *Grid {
	gr := newGrid(g.Kind)
	lanes := g.Lanes()
	if len(lanes) == 0 {
		return gr
	}

	widths := laneWidths(g, s, opts)

	// Lane centers: cumulative widths plus the inter-lane gap.
	centers := make([]int, len(lanes))
	x := 0
	gap := s.dim(opts.LaneGap)
	for i, w := range widths {
		centers[i] = x + w/2
		x += w + gap
	}
	gr.LaneCols = centers

	// Actor header boxes, all the same height.
	headerH := 3
	headerLines := make(map[int][]string, len(lanes))
	for i, nodeIdx := range lanes {
		lines := wrapLabel(g.Node(nodeIdx).Label, widths[i]-4)
		headerLines[nodeIdx] = lines
		if h := len(lines) + 2; h > headerH {
			headerH = h
		}
	}
	for i, nodeIdx := range lanes {
		box := Box{Row: 0, Col: centers[i] - widths[i]/2, W: widths[i], H: headerH}
		gr.Boxes[nodeIdx] = box
		gr.NodeLines[nodeIdx] = headerLines[nodeIdx]
		gr.extendBox(box)
	}

	gr.LaneTop = headerH
	cur := headerH + 1

	for ei, e := range g.Edges() {
		cFrom := centers[g.Node(e.From).Lane]
		cTo := centers[g.Node(e.To).Lane]

		if e.From == e.To {
			cur = selfMessage(gr, ei, e, cFrom, cur)
			continue
		}

		lo, hi := cFrom, cTo
		if lo > hi {
			lo, hi = hi, lo
		}

		// Label rows sit above the arrow row, wrapped to the span between
		// the two lifelines.
		arrowRow := cur
		if e.Label != "" {
			span := hi - lo - 1
			if span < 6 {
				span = 6
			}
			lines := wrapLine(e.Label, span-2)
			labelCol := lo + 1 + (hi-lo-1-runewidth.StringWidth(lines[0]))/2
			if labelCol < lo+1 {
				labelCol = lo + 1
			}
			gr.Labels[ei] = Cell{Row: cur, Col: labelCol}
			gr.LabelLines[ei] = lines
			arrowRow = cur + len(lines)
		}

		path := make([]Cell, 0, hi-lo+1)
		if cFrom <= cTo {
			for c := cFrom; c <= cTo; c++ {
				path = append(path, Cell{Row: arrowRow, Col: c})
			}
		} else {
			for c := cFrom; c >= cTo; c-- {
				path = append(path, Cell{Row: arrowRow, Col: c})
			}
		}
		gr.Paths[ei] = path
		gr.extendCell(Cell{Row: arrowRow, Col: hi})

		cur = arrowRow + 2
	}

	gr.LaneBot = cur
	if cur+1 > gr.Height {
		gr.Height = cur + 1
	}
	return gr
}

// laneWidths computes each lane's column width: the zoom-scaled maximum of
// the actor label, the labels of messages touching the lane, and the
// configured floor.
func laneWidths(g *graph.Graph, s scaler, opts Options) []int {
	lanes := g.Lanes()
	base := make([]int, len(lanes))
	for i, nodeIdx := range lanes {
		base[i] = labelWidth(g.Node(nodeIdx).Label) + 4
	}
	for _, e := range g.Edges() {
		if e.Label == "" {
			continue
		}
		w := runewidth.StringWidth(e.Label) + 2
		for _, n := range []int{e.From, e.To} {
			if lane := g.Node(n).Lane; lane >= 0 && w > base[lane] {
				base[lane] = w
			}
		}
	}

	widths := make([]int, len(lanes))
	for i, b := range base {
		if b < opts.MinLaneWidth {
			b = opts.MinLaneWidth
		}
		widths[i] = s.dim(b)
	}
	return widths
}

// selfMessage routes a message from a lane to itself as a small loop to the
// right of the lifeline: out, down, and back with the arrow tip pointing at
// the lifeline.
func selfMessage(gr *Grid, ei int, e graph.Edge, center, cur int) int {
	const reach = 4
	arrowRow := cur
	if e.Label != "" {
		gr.Labels[ei] = Cell{Row: cur, Col: center + 2}
		gr.LabelLines[ei] = []string{e.Label}
		gr.extendCell(Cell{Row: cur, Col: center + 1 + runewidth.StringWidth(e.Label)})
		arrowRow = cur + 1
	}

	var path []Cell
	for c := center + 1; c <= center+reach; c++ {
		path = append(path, Cell{Row: arrowRow, Col: c})
	}
	for c := center + reach; c >= center+1; c-- {
		path = append(path, Cell{Row: arrowRow + 1, Col: c})
	}
	gr.Paths[ei] = path
	gr.extendCell(Cell{Row: arrowRow + 1, Col: center + reach})
	return arrowRow + 3
}
