package dag

import "testing"

func buildDAG(t *testing.T, nodes []string, edges [][2]string) *DAG {
	t.Helper()
	g := New()
	for _, id := range nodes {
		if err := g.AddNode(id); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestCountLayerCrossings(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]string
		upper []string
		lower []string
		want  int
	}{
		{
			name:  "parallel",
			edges: [][2]string{{"a", "c"}, {"b", "d"}},
			upper: []string{"a", "b"},
			lower: []string{"c", "d"},
			want:  0,
		},
		{
			name:  "crossed",
			edges: [][2]string{{"a", "d"}, {"b", "c"}},
			upper: []string{"a", "b"},
			lower: []string{"c", "d"},
			want:  1,
		},
		{
			name:  "shared target",
			edges: [][2]string{{"a", "c"}, {"b", "c"}},
			upper: []string{"a", "b"},
			lower: []string{"c", "d"},
			want:  0,
		},
		{
			name:  "empty lower",
			edges: [][2]string{{"a", "c"}},
			upper: []string{"a", "b"},
			lower: nil,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildDAG(t, []string{"a", "b", "c", "d"}, tt.edges)
			if got := CountLayerCrossings(g, tt.upper, tt.lower); got != tt.want {
				t.Errorf("CountLayerCrossings() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountCrossings(t *testing.T) {
	// build-1 fans out to test-2 and security-1 while build-2 reaches back
	// to test-1: three crossings between the first two ranks.
	g := buildDAG(t,
		[]string{"build-1", "build-2", "test-1", "test-2", "test-3", "security-1", "deploy-1"},
		[][2]string{
			{"build-1", "test-1"}, {"build-1", "test-2"}, {"build-1", "security-1"},
			{"build-2", "test-1"}, {"build-2", "test-3"}, {"build-2", "security-1"},
			{"test-1", "deploy-1"}, {"test-2", "deploy-1"}, {"test-3", "deploy-1"},
		})
	orders := map[int][]string{
		0: {"build-1", "build-2"},
		1: {"test-1", "test-2", "test-3", "security-1"},
		2: {"deploy-1"},
	}
	if got := CountCrossings(g, orders); got != 3 {
		t.Errorf("CountCrossings() = %d, want 3", got)
	}
}
