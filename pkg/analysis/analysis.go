package analysis

import (
	"sort"

	"github.com/matzehuels/pipegraph/pkg/dag/transform"
	"github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/graph"
)

// DefaultTopN is the number of bottlenecks returned when topN ≤ 0.
const DefaultTopN = 3

// CriticalPath returns the endpoints of every critical edge, deduplicated in
// the order they are first seen (source before target).
func CriticalPath(g graph.Graph) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, e := range g.Edges {
		if e.IsCritical() {
			add(e.Source)
			add(e.Target)
		}
	}
	return ids
}

// CriticalEdges returns the IDs of edges tagged critical, in input order.
func CriticalEdges(g graph.Graph) []string {
	var ids []string
	for _, e := range g.Edges {
		if e.IsCritical() {
			ids = append(ids, e.Ref())
		}
	}
	return ids
}

// Bottlenecks returns up to topN node IDs with a defined duration, longest
// first. Ties keep input order. topN ≤ 0 means DefaultTopN.
func Bottlenecks(g graph.Graph, topN int) []string {
	if topN <= 0 {
		topN = DefaultTopN
	}
	candidates := make([]graph.Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.HasDuration() {
			candidates = append(candidates, n)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Seconds() > candidates[j].Seconds()
	})
	if topN > len(candidates) {
		topN = len(candidates)
	}
	ids := make([]string, topN)
	for i := range ids {
		ids[i] = candidates[i].ID
	}
	return ids
}

// Path is a chain of nodes and its summed duration.
type Path struct {
	Nodes    []string `json:"nodes"`
	Duration int      `json:"duration"`
}

// LongestPath returns the chain of dependent nodes with the largest total
// duration. Nodes without a duration weigh zero. Dangling edges are ignored.
//
// When two predecessors give the same total the one whose edge comes first
// wins. When several chains end with the same total, the one ending last in
// topological order is returned. A cycle yields CYCLE_DETECTED.
func LongestPath(g graph.Graph) (Path, error) {
	d, _ := graph.ToDAG(g)
	order, err := transform.TopologicalOrder(d)
	if err != nil {
		return Path{}, errors.Wrap(errors.ErrCodeCycleDetected, err, "longest path")
	}
	if len(order) == 0 {
		return Path{}, nil
	}

	weight := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := weight[n.ID]; !dup {
			weight[n.ID] = n.Seconds()
		}
	}

	dist := make(map[string]int, len(order))
	prev := make(map[string]string, len(order))
	for _, id := range order {
		best, from := 0, ""
		for _, p := range d.Parents(id) {
			if from == "" || dist[p] > best {
				best, from = dist[p], p
			}
		}
		dist[id] = best + weight[id]
		if from != "" {
			prev[id] = from
		}
	}

	end := order[0]
	for _, id := range order {
		if dist[id] >= dist[end] {
			end = id
		}
	}

	var nodes []string
	for id := end; ; {
		nodes = append(nodes, id)
		p, ok := prev[id]
		if !ok {
			break
		}
		id = p
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return Path{Nodes: nodes, Duration: dist[end]}, nil
}
