// Package transform provides the graph passes that prepare a pipeline DAG
// for layout.
//
// # Rank Assignment
//
// [AssignRanks] computes the rank (topological level) of every node using
// Kahn's algorithm with an explicit queue. A node's rank is its longest-path
// distance from any source, so every edge points strictly downward:
// rank(target) >= rank(source) + 1.
//
// Nodes that are never dequeued - those on a cycle or downstream of one -
// receive no rank and are reported in [Ranking.Unranked]. This is the natural
// cycle-detection signal of Kahn's algorithm; [TopologicalOrder] turns it
// into an error for callers that require a complete ordering.
//
// # Cycle Breaking
//
// [BreakCycles] removes DFS back edges so that every node can be ranked.
// Pipeline definitions should be acyclic, but hand-edited or scraped data
// sometimes is not.
//
// # Usage
//
//	r := transform.AssignRanks(g)
//	for rank, ids := range r.ByRank {
//	    fmt.Println(rank, ids)
//	}
//
// To force a complete ranking:
//
//	transform.BreakCycles(g)
//	r := transform.AssignRanks(g) // r.Unranked is empty
package transform
