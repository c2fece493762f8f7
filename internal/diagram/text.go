package diagram

import (
	"fmt"
	"strings"
)

// MaxASCIINeighbors is how many neighbors the ASCII tree lists before
// collapsing the rest into a single "[...]" line.
const MaxASCIINeighbors = 12

// Mermaid renders the graph as a top-down Mermaid flowchart.
func Mermaid(g *Graph) string {
	lines := []string{"graph TD"}
	nbs := g.Neighbors()
	if len(nbs) == 0 {
		lines = append(lines, "  "+g.Root)
		return strings.Join(lines, "\n")
	}
	for _, nb := range nbs {
		lines = append(lines, fmt.Sprintf("  %s --> %s", g.Root, nb))
	}
	return strings.Join(lines, "\n")
}

// ASCII renders the graph as a small tree. A class with no neighbors is drawn
// as a box.
func ASCII(g *Graph) string {
	nbs := g.Neighbors()
	if len(nbs) == 0 {
		return box(g.Root)
	}

	lines := []string{"[" + g.Root + "]"}
	for i, nb := range nbs {
		if i == MaxASCIINeighbors {
			lines = append(lines, "  └─> [...]")
			break
		}
		lines = append(lines, "  └─> ["+nb+"]")
	}
	return strings.Join(lines, "\n")
}

func box(label string) string {
	width := len(label)
	if width < 9 {
		width = 9
	}
	border := "+" + strings.Repeat("-", width+2) + "+"
	return strings.Join([]string{
		border,
		fmt.Sprintf("| %-*s |", width, label),
		border,
	}, "\n")
}
