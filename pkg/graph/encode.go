package graph

import (
	"encoding/json"

	"github.com/asciidiag/asciidiag/pkg/diagram"
)

// graphJSON is the wire form of a Graph. The id→index map is rebuilt on
// read, so only the arenas travel.
type graphJSON struct {
	Kind  diagram.SubKind `json:"kind"`
	Nodes []Node          `json:"nodes"`
	Edges []Edge          `json:"edges"`
	Lanes []int           `json:"lanes,omitempty"`
}

// Marshal serializes a graph for caching.
func Marshal(g *Graph) ([]byte, error) {
	return json.Marshal(graphJSON{
		Kind:  g.Kind,
		Nodes: g.nodes,
		Edges: g.edges,
		Lanes: g.lanes,
	})
}

// Unmarshal rebuilds a graph from its serialized form, re-interning node
// IDs, and validates edge endpoints so a corrupt cache entry cannot produce
// a broken graph.
func Unmarshal(data []byte) (*Graph, error) {
	var wire graphJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	g := &Graph{
		Kind:  wire.Kind,
		nodes: wire.Nodes,
		edges: wire.Edges,
		lanes: wire.Lanes,
		index: make(map[string]int, len(wire.Nodes)),
	}
	for i, n := range wire.Nodes {
		if n.ID == "" {
			return nil, ErrInvalidNodeID
		}
		if _, exists := g.index[n.ID]; exists {
			return nil, ErrDuplicateNodeID
		}
		g.index[n.ID] = i
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
