// Package pkg provides the core libraries for Pipegraph pipeline visualization.
//
// # Overview
//
// Pipegraph takes a CI/CD pipeline graph (jobs, stages and environments
// connected by dependency edges), places every node on a layered canvas and
// highlights where the pipeline spends its time. The pkg directory is
// organized into four main areas:
//
//  1. [graph] - Data model, validation and JSON/YAML/TOML codecs
//  2. [dag], [layout], [analysis] - Ranking, positioning and path analysis
//  3. [cache], [source] - Infrastructure (Redis/file caching, Mongo snapshots)
//  4. [runner], [server] - Orchestration (load → layout → analyze → render)
//
// # Architecture
//
// The typical data flow through Pipegraph:
//
//	Pipeline file / MongoDB snapshot / built-in sample
//	         ↓
//	    [source] package (load + validate a snapshot)
//	         ↓
//	    [dag/transform] package (Kahn ranking, cycle breaking)
//	         ↓
//	    [layout] package (x/y positions per rank)
//	         ↓
//	    [analysis] package (critical path, bottlenecks, longest path)
//	         ↓
//	    [render/nodelink] package (DOT and SVG with the analysis overlay)
//
// # Quick Start
//
// Lay out and analyze a pipeline file:
//
//	import (
//	    "github.com/matzehuels/pipegraph/pkg/analysis"
//	    "github.com/matzehuels/pipegraph/pkg/graph"
//	    "github.com/matzehuels/pipegraph/pkg/layout"
//	)
//
//	// 1. Read and validate the graph
//	g, _ := graph.ReadFile("pipeline.yaml")
//
//	// 2. Compute positions for a 1200x800 viewport
//	l, _ := layout.Compute(g, 1200, 800)
//
//	// 3. Find the slowest jobs
//	s := analysis.Summarize(g, 3)
//	fmt.Println(s.Bottlenecks)
//
// # Main Packages
//
// [graph] - Nodes, edges and their enums. [graph.Validate] rejects unknown
// statuses, types and platforms; dangling edges are tolerated unless
// [graph.RejectDanglingEdges] is passed.
//
// [dag] - Adjacency index built from a graph, with crossing counts between
// adjacent ranks.
//
// [dag/transform] - Rank assignment (Kahn's algorithm), strict topological
// order and back-edge removal.
//
// [layout] - The layered layout. Nodes on or behind a cycle are reported as
// unranked rather than failing, unless strict mode is requested.
//
// [analysis] - Critical path (nodes on critical edges), bottlenecks (slowest
// nodes) and the duration-weighted longest path.
//
// [render/nodelink] - Graphviz DOT output and in-process SVG rendering.
//
// [cache] - Content-addressed caching with file, Redis and null backends.
//
// [source] - Snapshot sources: built-in samples, files and MongoDB.
//
// [runner] - The layout → analysis → render pipeline shared by the CLI and
// the HTTP server, with per-stage caching.
//
// [server] - JSON/SVG HTTP API over the current snapshot, with optional
// file watching.
//
// [observability] - Hooks for layout, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/layout/...   # Specific package
//	go test -run Example       # Examples only
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/pipegraph/pkg/graph
// [graph.Validate]: https://pkg.go.dev/github.com/matzehuels/pipegraph/pkg/graph#Validate
// [graph.RejectDanglingEdges]: https://pkg.go.dev/github.com/matzehuels/pipegraph/pkg/graph#RejectDanglingEdges
// [dag]: https://pkg.go.dev/github.com/matzehuels/pipegraph/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/pipegraph/pkg/dag/transform
// [layout]: https://pkg.go.dev/github.com/matzehuels/pipegraph/pkg/layout
// [analysis]: https://pkg.go.dev/github.com/matzehuels/pipegraph/pkg/analysis
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/pipegraph/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/pipegraph/pkg/cache
// [source]: https://pkg.go.dev/github.com/matzehuels/pipegraph/pkg/source
// [runner]: https://pkg.go.dev/github.com/matzehuels/pipegraph/pkg/runner
// [server]: https://pkg.go.dev/github.com/matzehuels/pipegraph/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/pipegraph/pkg/observability
package pkg
