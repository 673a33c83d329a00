package dag

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the same
	// ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a directed cycle
	// exists. Cycles are detected using depth-first search with
	// white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Edge is a directed connection between two nodes. ID is carried through
// from the source data so diagnostics can name the offending edge.
type Edge struct {
	ID   string
	From string
	To   string
}

// DAG is a directed graph over node IDs with insertion-ordered adjacency.
//
// The zero value is not usable - use New to create a valid DAG instance.
type DAG struct {
	order    []string
	index    map[string]int
	edges    []Edge
	outgoing map[string][]string // nodeID -> successor IDs
	incoming map[string][]string // nodeID -> predecessor IDs
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		index:    make(map[string]int),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode appends a node to the graph.
// Returns ErrInvalidNodeID if the ID is empty or ErrDuplicateNodeID if the
// ID is already present.
func (d *DAG) AddNode(id string) error {
	if id == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.index[id]; exists {
		return ErrDuplicateNodeID
	}
	d.index[id] = len(d.order)
	d.order = append(d.order, id)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode when an endpoint is
// missing; the graph is left unchanged in that case. Parallel edges and
// self-loops are accepted.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.index[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.index[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes the first edge from→to if it exists.
func (d *DAG) RemoveEdge(from, to string) {
	i := slices.IndexFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	if i < 0 {
		return
	}
	d.edges = slices.Delete(d.edges, i, i+1)
	if j := slices.Index(d.outgoing[from], to); j >= 0 {
		d.outgoing[from] = slices.Delete(d.outgoing[from], j, j+1)
	}
	if j := slices.Index(d.incoming[to], from); j >= 0 {
		d.incoming[to] = slices.Delete(d.incoming[to], j, j+1)
	}
}

// NodeIDs returns all node IDs in insertion order.
// The returned slice is a copy.
func (d *DAG) NodeIDs() []string { return slices.Clone(d.order) }

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// Has reports whether the node exists.
func (d *DAG) Has(id string) bool {
	_, ok := d.index[id]
	return ok
}

// Index returns the insertion position of the node.
func (d *DAG) Index(id string) (int, bool) {
	i, ok := d.index[id]
	return i, ok
}

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.order) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the successor IDs of the node in edge insertion order.
// The returned slice should not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the predecessor IDs of the node in edge insertion order.
// The returned slice should not be modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Sources returns nodes with no incoming edges, in insertion order.
func (d *DAG) Sources() []string {
	var sources []string
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, id)
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, in insertion order.
func (d *DAG) Sinks() []string {
	var sinks []string
	for _, id := range d.order {
		if len(d.outgoing[id]) == 0 {
			sinks = append(sinks, id)
		}
	}
	return sinks
}

// Validate returns ErrGraphHasCycle if the graph contains a directed cycle
// (including self-loops), nil otherwise. Runs in O(N+E).
func (d *DAG) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.order))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range d.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// PosMap creates a position lookup map from a slice of node IDs.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}
