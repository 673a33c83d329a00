// Package sample provides the built-in demonstration pipeline graphs.
//
// [Pipeline] is a nine-job pipeline spanning five CI platforms with critical
// and optional dependencies. [Expanded] adds a mobile branch, a dependency
// scan and a code-quality job for a denser picture. Both return fresh copies
// so callers may modify them.
package sample

import "github.com/matzehuels/pipegraph/pkg/graph"

func job(id, name string, status graph.Status, platform graph.Platform, duration *int, cpu, mem float64) graph.Node {
	return graph.Node{
		ID:        id,
		Name:      name,
		Type:      graph.NodeTypeJob,
		Status:    status,
		Platform:  platform,
		Duration:  duration,
		Resources: &graph.Resources{CPU: cpu, Memory: mem},
	}
}

func env(id, name string, status graph.Status, platform graph.Platform, duration *int, cpu, mem float64) graph.Node {
	n := job(id, name, status, platform, duration, cpu, mem)
	n.Type = graph.NodeTypeEnvironment
	return n
}

func edge(id, source, target string, t graph.EdgeType) graph.Edge {
	return graph.Edge{ID: id, Source: source, Target: target, Type: t}
}

var secs = graph.Seconds

// Pipeline returns the sample pipeline: two builds fan out into three test
// jobs and a security scan, then staging, performance tests and production.
func Pipeline() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			job("build-1", "Build Backend", graph.StatusSuccess, graph.PlatformGitHub, secs(245), 2, 4),
			job("build-2", "Build Frontend", graph.StatusSuccess, graph.PlatformGitHub, secs(187), 2, 4),
			job("test-1", "Unit Tests", graph.StatusSuccess, graph.PlatformGitHub, secs(132), 1, 2),
			job("test-2", "Integration Tests", graph.StatusWarning, graph.PlatformJenkins, secs(368), 4, 8),
			job("test-3", "UI Tests", graph.StatusError, graph.PlatformJenkins, secs(421), 2, 6),
			env("deploy-1", "Deploy to Staging", graph.StatusPending, graph.PlatformAzure, nil, 2, 4),
			env("deploy-2", "Deploy to Production", graph.StatusPending, graph.PlatformAzure, nil, 4, 8),
			job("security-1", "Security Scan", graph.StatusRunning, graph.PlatformGitLab, nil, 2, 4),
			job("perf-1", "Performance Tests", graph.StatusPending, graph.PlatformCircle, nil, 8, 16),
		},
		Edges: []graph.Edge{
			edge("e1-3", "build-1", "test-1", graph.EdgeTypeDefault),
			edge("e1-4", "build-1", "test-2", graph.EdgeTypeDefault),
			edge("e2-3", "build-2", "test-1", graph.EdgeTypeDefault),
			edge("e2-5", "build-2", "test-3", graph.EdgeTypeDefault),
			edge("e3-6", "test-1", "deploy-1", graph.EdgeTypeCritical),
			edge("e4-6", "test-2", "deploy-1", graph.EdgeTypeCritical),
			edge("e5-6", "test-3", "deploy-1", graph.EdgeTypeCritical),
			edge("e6-7", "deploy-1", "deploy-2", graph.EdgeTypeCritical),
			edge("e1-8", "build-1", "security-1", graph.EdgeTypeOptional),
			edge("e2-8", "build-2", "security-1", graph.EdgeTypeOptional),
			edge("e6-9", "deploy-1", "perf-1", graph.EdgeTypeOptional),
			edge("e9-7", "perf-1", "deploy-2", graph.EdgeTypeOptional),
		},
	}
}

// Expanded returns Pipeline plus five extra nodes and nine extra edges.
func Expanded() graph.Graph {
	g := Pipeline()
	g.Nodes = append(g.Nodes,
		job("build-3", "Build Mobile App", graph.StatusSuccess, graph.PlatformGitHub, secs(203), 2, 4),
		job("test-4", "Mobile Tests", graph.StatusSuccess, graph.PlatformGitHub, secs(156), 2, 4),
		env("deploy-3", "Deploy to Beta", graph.StatusSuccess, graph.PlatformAzure, secs(78), 1, 2),
		job("security-2", "Dependency Scan", graph.StatusWarning, graph.PlatformGitLab, secs(194), 1, 2),
		job("analyze-1", "Code Quality", graph.StatusSuccess, graph.PlatformGitLab, secs(87), 1, 1),
	)
	g.Edges = append(g.Edges,
		edge("e3-10", "build-3", "test-4", graph.EdgeTypeDefault),
		edge("e10-11", "test-4", "deploy-3", graph.EdgeTypeDefault),
		edge("e11-7", "deploy-3", "deploy-2", graph.EdgeTypeOptional),
		edge("e1-12", "build-1", "security-2", graph.EdgeTypeOptional),
		edge("e2-12", "build-2", "security-2", graph.EdgeTypeOptional),
		edge("e3-12", "build-3", "security-2", graph.EdgeTypeOptional),
		edge("e1-13", "build-1", "analyze-1", graph.EdgeTypeOptional),
		edge("e2-13", "build-2", "analyze-1", graph.EdgeTypeOptional),
		edge("e3-13", "build-3", "analyze-1", graph.EdgeTypeOptional),
	)
	return g
}

// Names lists the built-in datasets accepted by ByName.
var Names = []string{"sample", "expanded"}

// ByName returns a built-in dataset by name.
func ByName(name string) (graph.Graph, bool) {
	switch name {
	case "sample":
		return Pipeline(), true
	case "expanded":
		return Expanded(), true
	}
	return graph.Graph{}, false
}
