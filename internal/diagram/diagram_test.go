package diagram

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/spinode/spinode/internal/catalog"
)

func l3extOutGraph() *Graph {
	return NewGraph("l3extOut", []catalog.Relation{
		{Type: catalog.RelChild, Target: "l3extLNodeP"},
		{Type: catalog.RelParent, Target: "fvTenant"},
		{Type: catalog.RelChild, Target: "l3extInstP"},
		{Type: catalog.RelSource, Target: "fvTenant"},
	})
}

func TestNewGraph_SortsAndDedupesNeighbors(t *testing.T) {
	g := l3extOutGraph()
	want := []string{"fvTenant", "l3extInstP", "l3extLNodeP"}
	if got := g.Neighbors(); !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbors() = %v, want %v", got, want)
	}
	if len(g.Edges) != 4 {
		t.Errorf("Edges = %d, want 4", len(g.Edges))
	}
	if g.Edges[0].Type != catalog.RelParent || g.Edges[1].Type != catalog.RelSource {
		t.Errorf("edges for the same target should be ordered by type: %+v", g.Edges[:2])
	}
}

func TestMermaid(t *testing.T) {
	got := Mermaid(l3extOutGraph())
	want := "graph TD\n  l3extOut --> fvTenant\n  l3extOut --> l3extInstP\n  l3extOut --> l3extLNodeP"
	if got != want {
		t.Errorf("Mermaid() =\n%s\nwant\n%s", got, want)
	}

	lone := Mermaid(NewGraph("fvBD", nil))
	if lone != "graph TD\n  fvBD" {
		t.Errorf("Mermaid(lone) = %q", lone)
	}
}

func TestASCII(t *testing.T) {
	got := ASCII(l3extOutGraph())
	want := "[l3extOut]\n  └─> [fvTenant]\n  └─> [l3extInstP]\n  └─> [l3extLNodeP]"
	if got != want {
		t.Errorf("ASCII() =\n%s\nwant\n%s", got, want)
	}
}

func TestASCII_Cap(t *testing.T) {
	var rels []catalog.Relation
	for i := 0; i < 15; i++ {
		rels = append(rels, catalog.Relation{Type: catalog.RelChild, Target: fmt.Sprintf("c%02d", i)})
	}
	lines := strings.Split(ASCII(NewGraph("root", rels)), "\n")
	if len(lines) != 1+MaxASCIINeighbors+1 {
		t.Fatalf("got %d lines, want %d", len(lines), MaxASCIINeighbors+2)
	}
	if lines[len(lines)-1] != "  └─> [...]" {
		t.Errorf("last line = %q", lines[len(lines)-1])
	}
	if lines[MaxASCIINeighbors] != "  └─> [c11]" {
		t.Errorf("last listed = %q", lines[MaxASCIINeighbors])
	}

	// exactly at the cap: no ellipsis
	exact := ASCII(NewGraph("root", rels[:MaxASCIINeighbors]))
	if strings.Contains(exact, "[...]") {
		t.Error("ellipsis shown at exactly the cap")
	}
}

func TestASCII_Box(t *testing.T) {
	got := ASCII(NewGraph("fvBD", nil))
	want := "+-----------+\n| fvBD      |\n+-----------+"
	if got != want {
		t.Errorf("ASCII(lone) =\n%s\nwant\n%s", got, want)
	}

	long := strings.Split(ASCII(NewGraph("bgpPeerEntry", nil)), "\n")
	if len(long[0]) != len(long[1]) {
		t.Errorf("box misaligned for long name:\n%s", strings.Join(long, "\n"))
	}
}

func TestToCytoscapeJSON(t *testing.T) {
	s, err := l3extOutGraph().ToCytoscapeJSON()
	if err != nil {
		t.Fatal(err)
	}
	var el cytoscapeElements
	if err := json.Unmarshal([]byte(s), &el); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(el.Nodes) != 4 || len(el.Edges) != 4 {
		t.Errorf("nodes=%d edges=%d, want 4 and 4", len(el.Nodes), len(el.Edges))
	}
	if el.Nodes[0].Data.Kind != NodeRoot || el.Nodes[1].Data.Kind != NodeClass {
		t.Errorf("node kinds = %+v", el.Nodes[:2])
	}
	ids := map[string]bool{}
	for _, e := range el.Edges {
		if ids[e.Data.ID] {
			t.Errorf("duplicate edge id %s", e.Data.ID)
		}
		ids[e.Data.ID] = true
	}
}

func TestGenerateHTML(t *testing.T) {
	html, err := GenerateHTML(l3extOutGraph(), HTMLOptions{Layout: "circle"})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<!DOCTYPE html>", `const layout = "circle"`, "l3extInstP", `edge[relType="rs"]`} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if strings.Contains(html, "has no recorded relations") {
		t.Error("non-empty graph shows empty note")
	}

	empty, err := GenerateHTML(NewGraph("fvBD", nil), HTMLOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(empty, "fvBD has no recorded relations") || !strings.Contains(empty, `"cose"`) {
		t.Error("empty graph page missing note or default layout")
	}

	if _, err := GenerateHTML(nil, HTMLOptions{}); err == nil {
		t.Error("expected error for nil graph")
	}
	if _, err := GenerateHTML(l3extOutGraph(), HTMLOptions{Layout: "spiral"}); err == nil {
		t.Error("expected error for invalid layout")
	}
}

func TestRender(t *testing.T) {
	g := l3extOutGraph()
	tests := []struct {
		format  string
		prefix  string
		wantErr bool
	}{
		{"", "graph TD", false},
		{FormatMermaid, "graph TD", false},
		{FormatASCII, "[l3extOut]", false},
		{FormatHTML, "<!DOCTYPE html>", false},
		{"svg", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := Render(g, tt.format, HTMLOptions{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Render() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("Render() = %.40q..., want prefix %q", got, tt.prefix)
			}
		})
	}
}

type fakeSource struct {
	rels []catalog.Relation
	err  error
}

func (f fakeSource) Relations(string) ([]catalog.Relation, error) { return f.rels, f.err }

func TestBuildGraph(t *testing.T) {
	g, err := BuildGraph(fakeSource{rels: []catalog.Relation{{Type: "child", Target: "b"}}}, "a")
	if err != nil || g.Root != "a" || len(g.Edges) != 1 {
		t.Errorf("BuildGraph() = %+v, %v", g, err)
	}

	boom := errors.New("boom")
	if _, err := BuildGraph(fakeSource{err: boom}, "a"); !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped boom", err)
	}
	if _, err := BuildGraph(fakeSource{}, ""); err == nil {
		t.Error("expected error for empty class")
	}
}
