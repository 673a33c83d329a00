// Package dag provides the adjacency index that the layout engine and the
// analysis passes traverse.
//
// # Overview
//
// A pipeline graph arrives as two ordered lists: nodes and edges. This package
// turns those lists into a directed graph keyed by node ID, with successor and
// predecessor lists that preserve insertion order. Preserving order matters:
// the layout is deterministic only because every traversal visits nodes and
// edges in the order they were loaded.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode] and edges with
// [DAG.AddEdge]. Node IDs must be unique and edges must reference existing
// nodes:
//
//	g := dag.New()
//	g.AddNode("build")
//	g.AddNode("test")
//	g.AddEdge(dag.Edge{ID: "e1", From: "build", To: "test"})
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.Sources] and
// [DAG.InDegree]. Use [DAG.Validate] to check for cycles.
//
// Most callers do not build a DAG by hand; graph.ToDAG converts a loaded
// pipeline graph, skipping dangling edges and reporting what it skipped.
//
// # Cycles
//
// The data model assumes but does not enforce acyclicity. [DAG.AddEdge]
// accepts edges that close a cycle; [DAG.Validate] reports them with
// [ErrGraphHasCycle]. The [transform] subpackage ranks nodes and can break
// cycles when a complete layout is required.
//
// # Concurrency
//
// DAG instances are not safe for concurrent mutation. Read-only traversal of
// a fully built DAG can run from multiple goroutines.
//
// [transform]: github.com/matzehuels/pipegraph/pkg/dag/transform
package dag
