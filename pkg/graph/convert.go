package graph

import (
	"errors"
	"fmt"

	"github.com/matzehuels/pipegraph/pkg/dag"
)

// BuildReport lists what ToDAG had to skip.
type BuildReport struct {
	DuplicateNodes []string `json:"duplicate_nodes,omitempty"`
	DanglingEdges  []string `json:"dangling_edges,omitempty"`
	// InvalidNodes holds the input positions ("#3") of nodes without an ID.
	InvalidNodes []string `json:"invalid_nodes,omitempty"`
}

// Clean reports whether nothing was skipped.
func (r BuildReport) Clean() bool {
	return len(r.DuplicateNodes) == 0 && len(r.DanglingEdges) == 0 && len(r.InvalidNodes) == 0
}

// ToDAG builds the adjacency index for g. Duplicate node IDs keep the first
// occurrence, nodes without an ID and edges with an unknown endpoint are
// dropped. All of them are recorded in the report rather than returned as
// errors.
func ToDAG(g Graph) (*dag.DAG, BuildReport) {
	d := dag.New()
	var rep BuildReport

	for i, n := range g.Nodes {
		switch err := d.AddNode(n.ID); {
		case errors.Is(err, dag.ErrDuplicateNodeID):
			rep.DuplicateNodes = append(rep.DuplicateNodes, n.ID)
		case errors.Is(err, dag.ErrInvalidNodeID):
			rep.InvalidNodes = append(rep.InvalidNodes, fmt.Sprintf("#%d", i))
		}
	}
	for _, e := range g.Edges {
		if err := d.AddEdge(dag.Edge{ID: e.Ref(), From: e.Source, To: e.Target}); err != nil {
			rep.DanglingEdges = append(rep.DanglingEdges, e.Ref())
		}
	}
	return d, rep
}
