package transform

import "github.com/matzehuels/pipegraph/pkg/dag"

// BreakCycles removes every DFS back edge from g and returns how many edges
// were removed. The search starts from sources in insertion order, then from
// any still unvisited node, so the result is deterministic.
func BreakCycles(g *dag.DAG) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]string{node, child})
			}
		}
		color[node] = black
	}

	for _, id := range g.Sources() {
		if color[id] == white {
			dfs(id)
		}
	}

	for _, id := range g.NodeIDs() {
		if color[id] == white {
			dfs(id)
		}
	}

	for _, e := range backEdges {
		g.RemoveEdge(e[0], e[1])
	}
	return len(backEdges)
}
