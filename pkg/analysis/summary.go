package analysis

import (
	"github.com/matzehuels/pipegraph/pkg/graph"
)

// Summary bundles the analysis overlays and totals for one graph.
type Summary struct {
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`

	CriticalPath  []string `json:"critical_path"`
	CriticalEdges []string `json:"critical_edges"`
	Bottlenecks   []string `json:"bottlenecks"`
	// LongestPath is nil when the graph has a cycle; Cyclic is then true.
	LongestPath *Path `json:"longest_path,omitempty"`
	Cyclic      bool  `json:"cyclic,omitempty"`

	// TotalDuration sums every known duration (sequential cost).
	TotalDuration int `json:"total_duration"`
	MaxDuration   int `json:"max_duration"`
	// Timed counts nodes that carry a duration.
	Timed int `json:"timed"`

	Resources graph.Resources        `json:"resources"`
	Statuses  map[graph.Status]int   `json:"statuses"`
	Platforms map[graph.Platform]int `json:"platforms"`
}

// Summarize runs every analysis on g.
func Summarize(g graph.Graph, topN int) Summary {
	s := Summary{
		NodeCount:     len(g.Nodes),
		EdgeCount:     len(g.Edges),
		CriticalPath:  CriticalPath(g),
		CriticalEdges: CriticalEdges(g),
		Bottlenecks:   Bottlenecks(g, topN),
		Statuses:      make(map[graph.Status]int),
		Platforms:     make(map[graph.Platform]int),
	}
	if p, err := LongestPath(g); err == nil {
		s.LongestPath = &p
	} else {
		s.Cyclic = true
	}

	for _, n := range g.Nodes {
		s.Statuses[n.Status]++
		s.Platforms[n.Platform]++
		if n.Resources != nil {
			s.Resources.CPU += n.Resources.CPU
			s.Resources.Memory += n.Resources.Memory
		}
		if !n.HasDuration() {
			continue
		}
		s.Timed++
		s.TotalDuration += n.Seconds()
		if n.Seconds() > s.MaxDuration {
			s.MaxDuration = n.Seconds()
		}
	}
	return s
}

// Overlay is the membership view used by renderers.
type Overlay struct {
	Critical   map[string]bool
	Bottleneck map[string]bool
}

// NewOverlay builds an overlay from a summary.
func NewOverlay(s Summary) Overlay {
	o := Overlay{
		Critical:   make(map[string]bool, len(s.CriticalPath)),
		Bottleneck: make(map[string]bool, len(s.Bottlenecks)),
	}
	for _, id := range s.CriticalPath {
		o.Critical[id] = true
	}
	for _, id := range s.Bottlenecks {
		o.Bottleneck[id] = true
	}
	return o
}
