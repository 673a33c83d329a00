package sample

import (
	"testing"

	"github.com/matzehuels/pipegraph/pkg/graph"
)

func TestDatasetsAreValid(t *testing.T) {
	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			g, ok := ByName(name)
			if !ok {
				t.Fatalf("ByName(%q) not found", name)
			}
			if err := graph.Validate(g, graph.RejectDanglingEdges()); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestSizes(t *testing.T) {
	tests := []struct {
		name         string
		g            graph.Graph
		nodes, edges int
	}{
		{"sample", Pipeline(), 9, 12},
		{"expanded", Expanded(), 14, 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.g.Nodes) != tt.nodes || len(tt.g.Edges) != tt.edges {
				t.Errorf("got %d nodes/%d edges, want %d/%d",
					len(tt.g.Nodes), len(tt.g.Edges), tt.nodes, tt.edges)
			}
		})
	}
}

func TestFreshCopies(t *testing.T) {
	a := Pipeline()
	a.Nodes[0].Name = "changed"
	*a.Nodes[0].Duration = 1
	b := Pipeline()
	if b.Nodes[0].Name != "Build Backend" || b.Nodes[0].Seconds() != 245 {
		t.Errorf("Pipeline() shares state between calls: %+v", b.Nodes[0])
	}
}

func TestByNameUnknown(t *testing.T) {
	if _, ok := ByName("nope"); ok {
		t.Error("ByName(nope) = ok")
	}
}
