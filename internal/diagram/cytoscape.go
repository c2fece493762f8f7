package diagram

import (
	"encoding/json"
	"fmt"
)

// Node kinds in the HTML view.
const (
	NodeRoot  = "root"
	NodeClass = "class"
)

type cytoscapeElements struct {
	Nodes []cytoscapeNode `json:"nodes"`
	Edges []cytoscapeEdge `json:"edges"`
}

type cytoscapeNode struct {
	Data cytoscapeNodeData `json:"data"`
}

type cytoscapeNodeData struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

type cytoscapeEdge struct {
	Data cytoscapeEdgeData `json:"data"`
}

type cytoscapeEdgeData struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	RelType     string `json:"relType"`
	Cardinality string `json:"cardinality,omitempty"`
}

// ToCytoscapeJSON converts the graph to Cytoscape.js elements JSON. Every
// relation becomes its own edge; neighbor nodes are de-duplicated.
func (g *Graph) ToCytoscapeJSON() (string, error) {
	nbs := g.Neighbors()
	elements := cytoscapeElements{
		Nodes: make([]cytoscapeNode, 0, len(nbs)+1),
		Edges: make([]cytoscapeEdge, 0, len(g.Edges)),
	}

	elements.Nodes = append(elements.Nodes, cytoscapeNode{
		Data: cytoscapeNodeData{ID: g.Root, Label: g.Root, Kind: NodeRoot},
	})
	for _, nb := range nbs {
		if nb == g.Root {
			continue
		}
		elements.Nodes = append(elements.Nodes, cytoscapeNode{
			Data: cytoscapeNodeData{ID: nb, Label: nb, Kind: NodeClass},
		})
	}

	for i, e := range g.Edges {
		elements.Edges = append(elements.Edges, cytoscapeEdge{
			Data: cytoscapeEdgeData{
				ID:          fmt.Sprintf("%s-%s-%s-%d", g.Root, e.Target, e.Type, i),
				Source:      g.Root,
				Target:      e.Target,
				RelType:     e.Type,
				Cardinality: e.Cardinality,
			},
		})
	}

	data, err := json.Marshal(elements)
	if err != nil {
		return "", fmt.Errorf("marshaling Cytoscape elements to JSON: %w", err)
	}
	return string(data), nil
}
