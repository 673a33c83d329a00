package analysis

import (
	"reflect"
	"testing"

	"github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/sample"
)

func timed(id string, d *int) graph.Node {
	return graph.Node{ID: id, Type: graph.NodeTypeJob, Status: graph.StatusSuccess, Platform: graph.PlatformGitLab, Duration: d}
}

func TestCriticalPathSample(t *testing.T) {
	got := CriticalPath(sample.Pipeline())
	want := []string{"test-1", "deploy-1", "test-2", "test-3", "deploy-2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CriticalPath = %v, want %v", got, want)
	}
}

func TestCriticalPath(t *testing.T) {
	tests := []struct {
		name  string
		edges []graph.Edge
		want  []string
	}{
		{"NoEdges", nil, nil},
		{"NoCritical", []graph.Edge{{Source: "a", Target: "b", Type: graph.EdgeTypeOptional}}, nil},
		{
			name: "Dedup",
			edges: []graph.Edge{
				{Source: "a", Target: "b", Type: graph.EdgeTypeCritical},
				{Source: "b", Target: "c", Type: graph.EdgeTypeDefault},
				{Source: "b", Target: "a", Type: graph.EdgeTypeCritical},
			},
			want: []string{"a", "b"},
		},
		{
			name:  "DanglingStillCounted",
			edges: []graph.Edge{{Source: "a", Target: "ghost", Type: graph.EdgeTypeCritical}},
			want:  []string{"a", "ghost"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CriticalPath(graph.Graph{Edges: tt.edges})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CriticalPath = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCriticalEdges(t *testing.T) {
	got := CriticalEdges(sample.Pipeline())
	want := []string{"e3-6", "e4-6", "e5-6", "e6-7"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CriticalEdges = %v, want %v", got, want)
	}
}

func TestBottlenecks(t *testing.T) {
	secs := graph.Seconds
	tied := graph.Graph{Nodes: []graph.Node{
		timed("a", secs(10)), timed("b", nil), timed("c", secs(30)),
		timed("d", secs(10)), timed("e", secs(0)), timed("f", secs(30)),
	}}
	tests := []struct {
		name string
		g    graph.Graph
		topN int
		want []string
	}{
		{"SampleDefault", sample.Pipeline(), 0, []string{"test-3", "test-2", "build-1"}},
		{"SampleNegative", sample.Pipeline(), -4, []string{"test-3", "test-2", "build-1"}},
		{"SampleTop1", sample.Pipeline(), 1, []string{"test-3"}},
		{"SampleAll", sample.Pipeline(), 100, []string{"test-3", "test-2", "build-1", "build-2", "test-1"}},
		{"ExpandedTop5", sample.Expanded(), 5, []string{"test-3", "test-2", "build-1", "build-3", "security-2"}},
		{"StableTies", tied, 5, []string{"c", "f", "a", "d", "e"}},
		{"Empty", graph.Graph{}, 3, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bottlenecks(tt.g, tt.topN)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Bottlenecks = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLongestPathSample(t *testing.T) {
	p, err := LongestPath(sample.Pipeline())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"build-1", "test-2", "deploy-1", "deploy-2"}
	if !reflect.DeepEqual(p.Nodes, want) || p.Duration != 613 {
		t.Errorf("LongestPath = %v (%d), want %v (613)", p.Nodes, p.Duration, want)
	}
}

func TestLongestPath(t *testing.T) {
	secs := graph.Seconds
	tests := []struct {
		name  string
		nodes []graph.Node
		edges [][2]string
		want  []string
		total int
	}{
		{"Empty", nil, nil, nil, 0},
		{"Single", []graph.Node{timed("a", secs(5))}, nil, []string{"a"}, 5},
		{
			name:  "PicksHeavierBranch",
			nodes: []graph.Node{timed("s", secs(1)), timed("x", secs(2)), timed("y", secs(9)), timed("t", secs(1))},
			edges: [][2]string{{"s", "x"}, {"s", "y"}, {"x", "t"}, {"y", "t"}},
			want:  []string{"s", "y", "t"},
			total: 11,
		},
		{
			name:  "TieFirstEdgeWins",
			nodes: []graph.Node{timed("p", secs(3)), timed("q", secs(3)), timed("t", secs(1))},
			edges: [][2]string{{"q", "t"}, {"p", "t"}},
			want:  []string{"q", "t"},
			total: 4,
		},
		{
			name:  "AllZero",
			nodes: []graph.Node{timed("a", nil), timed("b", nil)},
			edges: [][2]string{{"a", "b"}},
			want:  []string{"a", "b"},
			total: 0,
		},
		{
			name:  "DisconnectedHeavierWins",
			nodes: []graph.Node{timed("a", secs(1)), timed("b", secs(1)), timed("solo", secs(5))},
			edges: [][2]string{{"a", "b"}},
			want:  []string{"solo"},
			total: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.Graph{Nodes: tt.nodes}
			for _, e := range tt.edges {
				g.Edges = append(g.Edges, graph.Edge{Source: e[0], Target: e[1]})
			}
			p, err := LongestPath(g)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(p.Nodes, tt.want) || p.Duration != tt.total {
				t.Errorf("LongestPath = %v (%d), want %v (%d)", p.Nodes, p.Duration, tt.want, tt.total)
			}
		})
	}
}

func TestLongestPathCycle(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{timed("a", nil), timed("b", nil)},
		Edges: []graph.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}},
	}
	if _, err := LongestPath(g); !errors.Is(err, errors.ErrCodeCycleDetected) {
		t.Errorf("err = %v, want CYCLE_DETECTED", err)
	}
}

func TestSummarizeSample(t *testing.T) {
	s := Summarize(sample.Pipeline(), 0)
	if s.NodeCount != 9 || s.EdgeCount != 12 {
		t.Errorf("counts = %d/%d", s.NodeCount, s.EdgeCount)
	}
	if s.TotalDuration != 1353 || s.MaxDuration != 421 || s.Timed != 5 {
		t.Errorf("durations total=%d max=%d timed=%d", s.TotalDuration, s.MaxDuration, s.Timed)
	}
	if s.Resources.CPU != 27 || s.Resources.Memory != 56 {
		t.Errorf("resources = %+v", s.Resources)
	}
	if s.Statuses[graph.StatusPending] != 3 || s.Platforms[graph.PlatformGitHub] != 3 {
		t.Errorf("statuses=%v platforms=%v", s.Statuses, s.Platforms)
	}
	if s.Cyclic || s.LongestPath == nil || s.LongestPath.Duration != 613 {
		t.Errorf("longest path = %+v cyclic=%v", s.LongestPath, s.Cyclic)
	}

	o := NewOverlay(s)
	if !o.Critical["deploy-2"] || o.Critical["build-1"] || !o.Bottleneck["build-1"] {
		t.Errorf("overlay = %+v", o)
	}
}

func TestSummarizeCyclic(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{timed("a", graph.Seconds(4)), timed("b", nil)},
		Edges: []graph.Edge{{Source: "a", Target: "b", Type: graph.EdgeTypeCritical}, {Source: "b", Target: "a"}},
	}
	s := Summarize(g, 3)
	if !s.Cyclic || s.LongestPath != nil {
		t.Errorf("cyclic=%v longest=%v", s.Cyclic, s.LongestPath)
	}
	if !reflect.DeepEqual(s.CriticalPath, []string{"a", "b"}) || !reflect.DeepEqual(s.Bottlenecks, []string{"a"}) {
		t.Errorf("critical=%v bottlenecks=%v", s.CriticalPath, s.Bottlenecks)
	}
}
