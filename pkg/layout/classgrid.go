package layout

import "github.com/asciidiag/asciidiag/pkg/graph"

// classLayout packs class boxes into rows, filling each row left to right in
// first-appearance order up to a zoom-scaled width budget. Relationship
// edges connect the nearest box sides with straight or single-bend paths.
func classLayout(g *graph.Graph, s scaler, opts Options) *Grid {
	gr := newGrid(g.Kind)
	n := g.NodeCount()
	if n == 0 {
		return gr
	}

	budget := s.dim(opts.ClassRowBudget)
	maxLines := s.maxLabelLines() + 2 // class boxes carry member lines

	col, rowTop, rowH := 0, 0, 0
	hgap, vgap := s.hgap(), s.vgap()
	for i := 0; i < n; i++ {
		lines := wrapLabel(g.Node(i).Label, s.wrapWidth())
		gr.NodeLines[i] = lines
		w, h := boxFor(lines, maxLines)

		if col > 0 && col+w > budget {
			col = 0
			rowTop += rowH + vgap
			rowH = 0
		}
		box := Box{Row: rowTop, Col: col, W: w, H: h}
		gr.Boxes[i] = box
		gr.extendBox(box)
		col += w + hgap
		if h > rowH {
			rowH = h
		}
	}

	for ei, e := range g.Edges() {
		gr.Paths[ei] = connectBoxes(gr.Boxes[e.From], gr.Boxes[e.To])
		extendPath(gr, ei)
	}
	return gr
}

// connectBoxes routes between the nearest sides of two boxes: a straight
// horizontal or vertical run when the boxes face each other, otherwise a
// single bend. The final cell is the arrow tip on the target border.
func connectBoxes(src, dst Box) []Cell {
	srcMidRow := src.Row + src.H/2
	srcMidCol := src.Col + src.W/2
	dstMidRow := dst.Row + dst.H/2
	dstMidCol := dst.Col + dst.W/2

	switch {
	case dst.Col > src.right() && overlaps(src.Row, src.bottom(), dst.Row, dst.bottom()):
		// Facing horizontally: straight run at the shared row.
		row := (maxInt(src.Row, dst.Row) + minInt(src.bottom(), dst.bottom())) / 2
		return appendHorizontal(nil, row, src.right()+1, dst.Col)
	case src.Col > dst.right() && overlaps(src.Row, src.bottom(), dst.Row, dst.bottom()):
		row := (maxInt(src.Row, dst.Row) + minInt(src.bottom(), dst.bottom())) / 2
		return appendHorizontal(nil, row, src.Col-1, dst.right())
	case dst.Row > src.bottom() && overlaps(src.Col, src.right(), dst.Col, dst.right()):
		// Facing vertically: straight run at the shared column.
		colRange := [2]int{maxInt(src.Col, dst.Col), minInt(src.right(), dst.right())}
		col := (colRange[0] + colRange[1]) / 2
		return appendVertical(nil, col, src.bottom()+1, dst.Row)
	case src.Row > dst.bottom() && overlaps(src.Col, src.right(), dst.Col, dst.right()):
		colRange := [2]int{maxInt(src.Col, dst.Col), minInt(src.right(), dst.right())}
		col := (colRange[0] + colRange[1]) / 2
		return appendVertical(nil, col, src.Row-1, dst.bottom())
	}

	// Diagonal neighbors: leave the source vertically, bend once, and enter
	// the target through its side.
	var path []Cell
	if dstMidRow > srcMidRow {
		path = appendVertical(path, srcMidCol, src.bottom()+1, dstMidRow)
	} else {
		path = appendVertical(path, srcMidCol, src.Row-1, dstMidRow)
	}
	if dstMidCol > srcMidCol {
		path = appendHorizontal(path[:len(path)-1], dstMidRow, srcMidCol, dst.Col)
	} else {
		path = appendHorizontal(path[:len(path)-1], dstMidRow, srcMidCol, dst.right())
	}
	return path
}

// appendVertical appends cells in column col from row "from" to row "to",
// inclusive, in either direction.
func appendVertical(path []Cell, col, from, to int) []Cell {
	if from <= to {
		for r := from; r <= to; r++ {
			path = append(path, Cell{Row: r, Col: col})
		}
	} else {
		for r := from; r >= to; r-- {
			path = append(path, Cell{Row: r, Col: col})
		}
	}
	return path
}

// overlaps reports whether the closed intervals [a1,a2] and [b1,b2] overlap.
func overlaps(a1, a2, b1, b2 int) bool {
	return a1 <= b2 && b1 <= a2
}
