package layout

import (
	"math"

	"github.com/matzehuels/pipegraph/pkg/dag"
	"github.com/matzehuels/pipegraph/pkg/dag/transform"
	"github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/graph"
)

// Position is the top-left corner of a node box.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// PositionedNode is a node with its computed rank and position.
type PositionedNode struct {
	graph.Node `bson:",inline"`
	Rank       int      `json:"rank" bson:"rank"`
	Position   Position `json:"position" bson:"position"`
}

// Layout is the result of Compute.
type Layout struct {
	// Viewport the positions were computed for.
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	// CanvasHeight is the height needed to show every rank, never less than
	// the viewport height.
	CanvasHeight float64  `json:"canvas_height" bson:"canvas_height"`
	Geometry     Geometry `json:"geometry" bson:"geometry"`

	// Nodes holds ranked nodes in input order.
	Nodes []PositionedNode `json:"nodes" bson:"nodes"`
	// Edges holds input edges whose endpoints are both positioned.
	Edges []graph.Edge `json:"edges" bson:"edges"`

	Ranks   map[int][]string `json:"ranks" bson:"ranks"`
	MaxRank int              `json:"max_rank" bson:"max_rank"`

	Unranked       []string `json:"unranked,omitempty" bson:"unranked,omitempty"`
	DanglingEdges  []string `json:"dangling_edges,omitempty" bson:"dangling_edges,omitempty"`
	DuplicateNodes []string `json:"duplicate_nodes,omitempty" bson:"duplicate_nodes,omitempty"`
	// InvalidNodes holds the input positions of nodes dropped for having
	// no ID.
	InvalidNodes []string `json:"invalid_nodes,omitempty" bson:"invalid_nodes,omitempty"`
	// BrokenEdges lists edges removed by WithBreakCycles. They are still
	// present in Edges.
	BrokenEdges []string `json:"broken_edges,omitempty" bson:"broken_edges,omitempty"`

	// Crossings counts edge crossings between adjacent ranks.
	Crossings int `json:"crossings" bson:"crossings"`
}

// Node returns the positioned node with the given ID.
func (l *Layout) Node(id string) (PositionedNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PositionedNode{}, false
}

// Positions maps node IDs to positions.
func (l *Layout) Positions() map[string]Position {
	m := make(map[string]Position, len(l.Nodes))
	for _, n := range l.Nodes {
		m[n.ID] = n.Position
	}
	return m
}

// Complete reports whether every node was positioned and every edge kept.
func (l *Layout) Complete() bool {
	return len(l.Unranked) == 0 && len(l.DanglingEdges) == 0 && len(l.InvalidNodes) == 0
}

// Compute positions the nodes of g in a width×height viewport. Non-positive
// dimensions fall back to DefaultWidth and DefaultHeight.
//
// Compute does not modify g. With no options it never fails on structural
// problems: dangling edges and unrankable nodes are reported in the result.
func Compute(g graph.Graph, width, height float64, opts ...Option) (Layout, error) {
	cfg := config{geometry: DefaultGeometry()}
	for _, opt := range opts {
		opt(&cfg)
	}
	geom := cfg.geometry.withDefaults()

	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if err := errors.ValidateViewport(width, height); err != nil {
		return Layout{}, err
	}
	if math.IsInf(width, 0) || math.IsInf(height, 0) {
		return Layout{}, errors.New(errors.ErrCodeInvalidViewport, "viewport must be finite")
	}

	d, report := graph.ToDAG(g)
	if cfg.strict && len(report.DanglingEdges) > 0 {
		return Layout{}, errors.New(errors.ErrCodeDanglingEdge,
			"%d edge(s) reference unknown nodes: %v", len(report.DanglingEdges), report.DanglingEdges)
	}

	var broken []string
	if cfg.breakCycles {
		broken = breakCycles(d)
	}

	ranking := transform.AssignRanks(d)
	if cfg.strict && !ranking.Complete() {
		return Layout{}, errors.New(errors.ErrCodeCycleDetected,
			"%d node(s) are on or behind a cycle: %v", len(ranking.Unranked), ranking.Unranked)
	}

	l := Layout{
		Width:          width,
		Height:         height,
		Geometry:       geom,
		Ranks:          make(map[int][]string, len(ranking.ByRank)),
		MaxRank:        ranking.MaxRank(),
		Unranked:       ranking.Unranked,
		DanglingEdges:  report.DanglingEdges,
		DuplicateNodes: report.DuplicateNodes,
		InvalidNodes:   report.InvalidNodes,
		BrokenEdges:    broken,
	}

	slot := make(map[string]int, len(ranking.Ranks))
	for rank, ids := range ranking.ByRank {
		l.Ranks[rank] = ids
		for i, id := range ids {
			slot[id] = i
		}
	}
	l.Crossings = dag.CountCrossings(d, l.Ranks)

	l.Nodes = make([]PositionedNode, 0, len(ranking.Ranks))
	placed := make(map[string]bool, len(ranking.Ranks))
	for _, n := range g.Nodes {
		rank, ok := ranking.Rank(n.ID)
		if !ok || placed[n.ID] {
			continue
		}
		placed[n.ID] = true
		count := float64(len(ranking.ByRank[rank]))
		spacing := width / (count + 1)
		l.Nodes = append(l.Nodes, PositionedNode{
			Node: n,
			Rank: rank,
			Position: Position{
				X: spacing*float64(slot[n.ID]+1) - geom.NodeWidth/2,
				Y: float64(rank)*geom.RowHeight() + geom.TopMargin,
			},
		})
	}

	l.Edges = make([]graph.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if placed[e.Source] && placed[e.Target] {
			l.Edges = append(l.Edges, e)
		}
	}

	l.CanvasHeight = height
	if l.MaxRank >= 0 {
		bottom := float64(l.MaxRank)*geom.RowHeight() + geom.TopMargin + geom.NodeHeight + geom.TopMargin
		l.CanvasHeight = math.Max(height, bottom)
	}
	return l, nil
}

// breakCycles removes back edges from d and returns their IDs.
func breakCycles(d *dag.DAG) []string {
	before := d.Edges()
	if transform.BreakCycles(d) == 0 {
		return nil
	}
	remaining := make(map[string]int, d.EdgeCount())
	for _, e := range d.Edges() {
		remaining[e.ID]++
	}
	var removed []string
	for _, e := range before {
		if remaining[e.ID] > 0 {
			remaining[e.ID]--
			continue
		}
		removed = append(removed, e.ID)
	}
	return removed
}
