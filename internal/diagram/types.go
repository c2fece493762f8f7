// Package diagram renders a class and its related classes as Mermaid, ASCII
// or an interactive HTML page.
package diagram

import (
	"sort"

	"github.com/spinode/spinode/internal/catalog"
)

// Graph is a root class and its outgoing relations.
type Graph struct {
	Root  string `json:"root"`
	Edges []Edge `json:"edges"`
}

// Edge is one relation from the root to another class.
type Edge struct {
	Target      string `json:"target"`
	Type        string `json:"type"`
	Cardinality string `json:"cardinality,omitempty"`
}

// NewGraph builds a graph from a class's relations, sorted by target then type.
func NewGraph(root string, rels []catalog.Relation) *Graph {
	g := &Graph{Root: root, Edges: make([]Edge, 0, len(rels))}
	for _, r := range rels {
		if r.Target == "" {
			continue
		}
		g.Edges = append(g.Edges, Edge{Target: r.Target, Type: r.Type, Cardinality: r.Cardinality})
	}
	sort.SliceStable(g.Edges, func(i, j int) bool {
		if g.Edges[i].Target != g.Edges[j].Target {
			return g.Edges[i].Target < g.Edges[j].Target
		}
		return g.Edges[i].Type < g.Edges[j].Type
	})
	return g
}

// Neighbors returns the distinct target names in sorted order.
func (g *Graph) Neighbors() []string {
	var out []string
	for i, e := range g.Edges {
		if i > 0 && g.Edges[i-1].Target == e.Target {
			continue
		}
		out = append(out, e.Target)
	}
	return out
}

// IsEmpty reports whether the root has no neighbors.
func (g *Graph) IsEmpty() bool {
	return len(g.Edges) == 0
}
