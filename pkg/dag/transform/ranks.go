package transform

import (
	"fmt"

	"github.com/matzehuels/pipegraph/pkg/dag"
)

// Ranking is the result of [AssignRanks].
type Ranking struct {
	// Ranks maps each ranked node ID to its level (0 = source).
	Ranks map[string]int
	// ByRank lists node IDs per rank in graph insertion order.
	// ByRank[r] holds every node with rank r.
	ByRank [][]string
	// Order is the topological order in which nodes were dequeued.
	Order []string
	// Unranked lists nodes that never reached zero in-degree, in insertion
	// order. Non-empty only when the graph has a cycle.
	Unranked []string
}

// Rank returns the node's rank and whether it was assigned one.
func (r Ranking) Rank(id string) (int, bool) {
	rank, ok := r.Ranks[id]
	return rank, ok
}

// MaxRank returns the deepest rank, or -1 when nothing was ranked.
func (r Ranking) MaxRank() int { return len(r.ByRank) - 1 }

// Complete reports whether every node received a rank.
func (r Ranking) Complete() bool { return len(r.Unranked) == 0 }

// AssignRanks assigns a rank to each node based on its depth in the graph.
//
// AssignRanks uses a longest-path algorithm via topological sort (Kahn's
// algorithm). Each node is placed at one plus the maximum rank of any of its
// predecessors, ensuring that:
//   - Source nodes (no incoming edges) are at rank 0
//   - All predecessors are strictly above their successors
//   - A node is ranked only once all of its predecessors are ranked
//
// # Algorithm
//
//  1. Enqueue all source nodes (in-degree 0) at rank 0, in insertion order
//  2. Dequeue a node; for each successor set rank = max(rank, current + 1)
//  3. Decrement the successor's in-degree; enqueue it when it reaches zero
//  4. Repeat until the queue is empty
//
// # Cycles
//
// Nodes on a cycle never reach zero in-degree and so are never dequeued. They
// are left out of Ranks and listed in Unranked, as is every node reachable
// only through them. A two-node cycle with no entry point therefore yields
// zero ranked nodes for that cycle.
//
// # Performance
//
// Time complexity is O(V + E). Space complexity is O(V).
func AssignRanks(g *dag.DAG) Ranking {
	ids := g.NodeIDs()
	inDegree := make(map[string]int, len(ids))
	ranks := make(map[string]int, len(ids))
	queue := make([]string, 0, len(ids))
	order := make([]string, 0, len(ids))

	for _, id := range ids {
		degree := g.InDegree(id)
		inDegree[id] = degree
		if degree == 0 {
			ranks[id] = 0
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		order = append(order, curr)

		for _, child := range g.Children(curr) {
			if rank := ranks[curr] + 1; rank > ranks[child] {
				ranks[child] = rank
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	r := Ranking{Ranks: make(map[string]int, len(order)), Order: order}
	dequeued := dag.PosMap(order)
	for _, id := range ids {
		if _, ok := dequeued[id]; !ok {
			r.Unranked = append(r.Unranked, id)
			continue
		}
		rank := ranks[id]
		r.Ranks[id] = rank
		for len(r.ByRank) <= rank {
			r.ByRank = append(r.ByRank, nil)
		}
		r.ByRank[rank] = append(r.ByRank[rank], id)
	}
	return r
}

// TopologicalOrder returns the nodes in Kahn dequeue order. It returns an
// error wrapping [dag.ErrGraphHasCycle] when some nodes cannot be ordered.
func TopologicalOrder(g *dag.DAG) ([]string, error) {
	r := AssignRanks(g)
	if !r.Complete() {
		return r.Order, fmt.Errorf("%w: %d node(s) unreachable in topological order: %v",
			dag.ErrGraphHasCycle, len(r.Unranked), r.Unranked)
	}
	return r.Order, nil
}
