// Package graph defines the pipeline graph data model and its serialization.
//
// A pipeline graph is a snapshot of CI/CD work: jobs, stages and deployment
// environments ([Node]) connected by directed dependencies ([Edge]). Graphs
// are loaded atomically and never partially updated; a refresh replaces the
// whole [Graph].
//
// # Ingestion Boundary
//
// Data from files, the HTTP API or a database is untrusted. [Prepare] fills
// defaults ([Normalize]) and checks required fields and enum values
// ([Validate]) before anything else sees the graph:
//
//	g, err := graph.ReadFile("pipeline.yaml") // decode + Prepare
//
// Edges that reference unknown nodes are not an ingestion error by default.
// Layout filters them silently; pass [RejectDanglingEdges] to Validate to
// surface them instead.
//
// # Formats
//
// Graphs serialize to JSON (canonical), YAML and TOML. The format of a file is
// chosen by its extension:
//
//	{
//	  "nodes": [{"id": "build-1", "name": "Build", "type": "job", "status": "success", "platform": "github", "duration": 245}],
//	  "edges": [{"id": "e1", "source": "build-1", "target": "test-1", "type": "critical"}]
//	}
//
// # Converting to a DAG
//
// [ToDAG] builds the adjacency index used by layout and analysis. It skips
// duplicate nodes and dangling edges and reports both in a [BuildReport].
package graph
