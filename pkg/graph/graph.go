// Package graph defines the dialect-neutral diagram graph.
//
// Nodes and edges live in flat arenas indexed by position; node identity is
// an interned string ID with an id→index map. This keeps cycle handling in
// flowcharts simple (ranks over indices) and avoids pointer-linked graph
// structures. A Graph is built once by the parser and never mutated
// afterwards; layout reads it concurrently without locks.
package graph

import (
	"errors"

	"github.com/asciidiag/asciidiag/pkg/diagram"
)

var (
	// ErrInvalidNodeID is returned by AddNode when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by AddNode when a node with the same
	// ID already exists. Use Ensure for the flowchart dedup behavior.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownEndpoint is returned by AddEdge and Validate when an edge
	// references a node ID that does not exist.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")
)

// NodeKind distinguishes how a node is drawn and which layout treats it.
type NodeKind int

const (
	KindGeneric  NodeKind = iota
	KindActor             // sequence diagram participant, owns a lane
	KindProcess           // flowchart rectangle
	KindDecision          // flowchart {..} diamond hint
	KindRounded           // flowchart (..) rounded hint
	KindClass             // class box with member lines
)

// EdgeStyle selects the line glyphs used for an edge.
type EdgeStyle int

const (
	StyleSolid EdgeStyle = iota
	StyleDashed
	// StyleInherit marks class-diagram inheritance (A --|> B); drawn dashed
	// with a hollow head.
	StyleInherit
)

// Direction is the arrowhead placement of an edge.
type Direction int

const (
	OneWay Direction = iota
	TwoWay
)

// Node is a vertex in the diagram graph. Label holds one or more display
// lines; class members are folded into it by the parser. Nodes are never
// mutated after the graph is built.
type Node struct {
	ID    string
	Label []string
	Kind  NodeKind
	Lane  int // lane index for actors, -1 otherwise
}

// Edge is a directed connection between two nodes, by arena index.
type Edge struct {
	From  int
	To    int
	Label string
	Style EdgeStyle
	Dir   Direction
	Seq   int // temporal order for sequence diagrams, -1 otherwise
}

// Graph is the set of nodes, edges, and lanes for one diagram, plus its
// sub-kind. The zero value is not usable; call New.
type Graph struct {
	Kind  diagram.SubKind
	nodes []Node
	edges []Edge
	index map[string]int
	lanes []int // node indices in first-appearance order (sequence only)
}

// New creates an empty graph for the given sub-kind.
func New(kind diagram.SubKind) *Graph {
	return &Graph{Kind: kind, index: make(map[string]int)}
}

// AddNode appends a node to the arena and interns its ID.
// Returns the node's index.
func (g *Graph) AddNode(n Node) (int, error) {
	if n.ID == "" {
		return 0, ErrInvalidNodeID
	}
	if _, exists := g.index[n.ID]; exists {
		return 0, ErrDuplicateNodeID
	}
	if n.Kind != KindActor {
		n.Lane = -1
	}
	g.nodes = append(g.nodes, n)
	idx := len(g.nodes) - 1
	g.index[n.ID] = idx
	return idx, nil
}

// Ensure returns the index of the node with the given ID, creating it with
// the provided label and kind if absent. For an existing node the first-seen
// label and shape win; later declarations are ignored.
func (g *Graph) Ensure(id string, label []string, kind NodeKind) (int, error) {
	if idx, ok := g.index[id]; ok {
		return idx, nil
	}
	return g.AddNode(Node{ID: id, Label: label, Kind: kind})
}

// EnsureLane returns the lane index for an actor node, registering the node
// as a lane owner on first sight. Lane order is first-appearance order in
// source, which is the total order sequence layout columns follow.
func (g *Graph) EnsureLane(id string) (int, error) {
	if idx, ok := g.index[id]; ok {
		return g.nodes[idx].Lane, nil
	}
	lane := len(g.lanes)
	idx, err := g.AddNode(Node{ID: id, Label: []string{id}, Kind: KindActor, Lane: lane})
	if err != nil {
		return 0, err
	}
	g.lanes = append(g.lanes, idx)
	return lane, nil
}

// AddEdge appends an edge referencing nodes by ID.
func (g *Graph) AddEdge(from, to string, e Edge) error {
	fi, ok := g.index[from]
	if !ok {
		return ErrUnknownEndpoint
	}
	ti, ok := g.index[to]
	if !ok {
		return ErrUnknownEndpoint
	}
	e.From, e.To = fi, ti
	g.edges = append(g.edges, e)
	return nil
}

// Node returns the node at arena index i.
func (g *Graph) Node(i int) Node { return g.nodes[i] }

// Lookup returns the arena index for a node ID.
func (g *Graph) Lookup(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Nodes returns the node arena in insertion order. Read-only view.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the edge arena in insertion order. Read-only view.
func (g *Graph) Edges() []Edge { return g.edges }

// Lanes returns the actor node indices in lane order. Empty for non-sequence
// graphs.
func (g *Graph) Lanes() []int { return g.lanes }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Validate checks that every edge endpoint is inside the arena. Parsers only
// produce valid graphs; this guards the boundary for graphs built by other
// callers.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if e.From < 0 || e.From >= len(g.nodes) || e.To < 0 || e.To >= len(g.nodes) {
			return ErrUnknownEndpoint
		}
	}
	return nil
}
