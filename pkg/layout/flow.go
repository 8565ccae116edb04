package layout

import "github.com/asciidiag/asciidiag/pkg/graph"

// layeredLayout places flowchart and generic node-edge graphs in ranked
// rows. A node's rank is its longest path distance from any source within
// its connected component; back edges found by DFS are excluded from the
// rank computation and routed through a side channel to the right of the
// diagram. Disconnected components stack below one another in
// first-appearance order.
func layeredLayout(g *graph.Graph, s scaler) *Grid {
	gr := newGrid(g.Kind)
	n := g.NodeCount()
	if n == 0 {
		return gr
	}

	back := backEdges(g)
	ranks := assignRanks(g, back)
	comps := components(g)

	// Wrap labels and size boxes once; rank rows derive their height from
	// their tallest box.
	maxLines := s.maxLabelLines()
	boxW := make([]int, n)
	boxH := make([]int, n)
	for i := 0; i < n; i++ {
		lines := wrapLabel(g.Node(i).Label, s.wrapWidth())
		gr.NodeLines[i] = lines
		boxW[i], boxH[i] = boxFor(lines, maxLines)
	}

	hgap, vgap := s.hgap(), s.vgap()

	// Per component, group nodes by rank preserving arena (first-appearance)
	// order, then stack the components vertically.
	rowTop := 0
	for _, comp := range comps {
		maxRank := 0
		for _, node := range comp {
			if ranks[node] > maxRank {
				maxRank = ranks[node]
			}
		}
		rows := make([][]int, maxRank+1)
		for _, node := range comp {
			rows[ranks[node]] = append(rows[ranks[node]], node)
		}

		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			rowH := 0
			col := 0
			for _, node := range row {
				box := Box{Row: rowTop, Col: col, W: boxW[node], H: boxH[node]}
				gr.Boxes[node] = box
				gr.extendBox(box)
				col += boxW[node] + hgap
				if boxH[node] > rowH {
					rowH = boxH[node]
				}
			}
			rowTop += rowH + vgap
		}
	}

	routeForward(g, gr, back, vgap)
	routeBack(g, gr, back)
	return gr
}

// backEdges finds edges that close a cycle using white/gray/black DFS from
// every node in arena order.
func backEdges(g *graph.Graph) map[int]bool {
	const (
		white = iota
		gray
		black
	)

	n := g.NodeCount()
	color := make([]int, n)
	back := make(map[int]bool)

	out := make(map[int][]int, n) // node → outgoing edge indices
	for ei, e := range g.Edges() {
		out[e.From] = append(out[e.From], ei)
	}

	var dfs func(node int)
	dfs = func(node int) {
		color[node] = gray
		for _, ei := range out[node] {
			to := g.Edges()[ei].To
			switch color[to] {
			case white:
				dfs(to)
			case gray:
				back[ei] = true
			}
		}
		color[node] = black
	}

	for i := 0; i < n; i++ {
		if color[i] == white {
			dfs(i)
		}
	}
	return back
}

// assignRanks computes longest-path ranks over the forward edges using
// Kahn's algorithm. With back edges removed the graph is acyclic, so every
// node is reached.
func assignRanks(g *graph.Graph, back map[int]bool) []int {
	n := g.NodeCount()
	ranks := make([]int, n)
	inDegree := make([]int, n)
	out := make(map[int][]int, n)

	for ei, e := range g.Edges() {
		if back[ei] {
			continue
		}
		inDegree[e.To]++
		out[e.From] = append(out[e.From], e.To)
	}

	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range out[curr] {
			if r := ranks[curr] + 1; r > ranks[child] {
				ranks[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return ranks
}

// components groups nodes into connected components (edges taken as
// undirected), ordered by the first-appearance of their earliest member.
func components(g *graph.Graph) [][]int {
	n := g.NodeCount()
	adj := make(map[int][]int, n)
	for _, e := range g.Edges() {
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
	}

	seen := make([]bool, n)
	var comps [][]int
	for i := 0; i < n; i++ {
		if seen[i] {
			continue
		}
		var comp []int
		stack := []int{i}
		seen[i] = true
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, node)
			for _, next := range adj[node] {
				if !seen[next] {
					seen[next] = true
					stack = append(stack, next)
				}
			}
		}
		// Arena order within the component keeps placement first-appearance.
		sortInts(comp)
		comps = append(comps, comp)
	}
	return comps
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j] < a[j-1]; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}

// routeForward routes every forward edge orthogonally: down from the source
// bottom-center, horizontal through the gap above the target's rank band,
// then down into the target top-center.
func routeForward(g *graph.Graph, gr *Grid, back map[int]bool, vgap int) {
	for ei, e := range g.Edges() {
		if back[ei] {
			continue
		}
		src, dst := gr.Boxes[e.From], gr.Boxes[e.To]
		srcCol := src.Col + src.W/2
		dstCol := dst.Col + dst.W/2

		// Forward edges always point to a strictly deeper rank, so the
		// target band starts below the source band.
		channel := dst.Row - (vgap+1)/2
		if channel <= src.bottom() {
			channel = src.bottom() + 1
		}

		var path []Cell
		for r := src.bottom() + 1; r <= channel; r++ {
			path = append(path, Cell{Row: r, Col: srcCol})
		}
		path = appendHorizontal(path, channel, srcCol, dstCol)
		for r := channel + 1; r < dst.Row; r++ {
			path = append(path, Cell{Row: r, Col: dstCol})
		}
		path = append(path, Cell{Row: dst.Row, Col: dstCol}) // arrow tip on the border
		gr.Paths[ei] = path

		if e.Label != "" {
			gr.Labels[ei] = Cell{Row: channel - 1, Col: minInt(srcCol, dstCol) + 1}
			if gr.Labels[ei].Row <= src.bottom() {
				gr.Labels[ei] = Cell{Row: channel, Col: maxInt(srcCol, dstCol) + 2}
			}
			gr.LabelLines[ei] = []string{e.Label}
		}
		extendPath(gr, ei)
	}
}

// routeBack routes each back edge through its own vertical channel to the
// right of the diagram, entering the target from the right side. A self
// loop leaves its node at mid-height and re-enters one row below.
func routeBack(g *graph.Graph, gr *Grid, back map[int]bool) {
	channel := gr.Width + 1
	for ei, e := range g.Edges() {
		if !back[ei] {
			continue
		}
		src, dst := gr.Boxes[e.From], gr.Boxes[e.To]
		srcRow := src.Row + src.H/2
		dstRow := dst.Row + dst.H/2
		if e.From == e.To {
			dstRow = srcRow + 1
		}

		var path []Cell
		path = appendHorizontal(path, srcRow, src.right()+1, channel)
		if dstRow != srcRow {
			step := -1
			if dstRow > srcRow {
				step = 1
			}
			for r := srcRow + step; r != dstRow; r += step {
				path = append(path, Cell{Row: r, Col: channel})
			}
		}
		path = appendHorizontal(path, dstRow, channel, dst.right()+1)
		path = append(path, Cell{Row: dstRow, Col: dst.right()})
		gr.Paths[ei] = path
		if e.Label != "" {
			gr.Labels[ei] = Cell{Row: srcRow - 1, Col: src.right() + 2}
			gr.LabelLines[ei] = []string{e.Label}
		}
		extendPath(gr, ei)
		channel += 2
	}
}

func appendHorizontal(path []Cell, row, from, to int) []Cell {
	if from <= to {
		for c := from; c <= to; c++ {
			path = append(path, Cell{Row: row, Col: c})
		}
	} else {
		for c := from; c >= to; c-- {
			path = append(path, Cell{Row: row, Col: c})
		}
	}
	return path
}

func extendPath(gr *Grid, ei int) {
	for _, c := range gr.Paths[ei] {
		gr.extendCell(c)
	}
	if l, ok := gr.Labels[ei]; ok {
		w := labelWidth(gr.LabelLines[ei])
		gr.extendCell(Cell{Row: l.Row + len(gr.LabelLines[ei]) - 1, Col: l.Col + w - 1})
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
