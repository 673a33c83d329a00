package graph

import (
	"time"
)

// NodeType classifies a pipeline node.
type NodeType string

// Node types.
const (
	NodeTypeJob         NodeType = "job"
	NodeTypeStage       NodeType = "stage"
	NodeTypeEnvironment NodeType = "environment"
)

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeJob, NodeTypeStage, NodeTypeEnvironment:
		return true
	}
	return false
}

// Status is the last known execution state of a node.
type Status string

// Node statuses.
const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusRunning Status = "running"
	StatusPending Status = "pending"
	StatusUnknown Status = "unknown"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusSuccess, StatusWarning, StatusError, StatusRunning, StatusPending, StatusUnknown}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSuccess, StatusWarning, StatusError, StatusRunning, StatusPending, StatusUnknown:
		return true
	}
	return false
}

// Platform identifies the CI/CD system a node runs on.
type Platform string

// Supported platforms.
const (
	PlatformJenkins Platform = "jenkins"
	PlatformGitHub  Platform = "github"
	PlatformGitLab  Platform = "gitlab"
	PlatformAzure   Platform = "azure"
	PlatformCircle  Platform = "circle"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	_, ok := platforms[p]
	return ok
}

// EdgeType tags an edge for the analysis overlays.
type EdgeType string

// Edge types. The empty string is read as EdgeTypeDefault.
const (
	EdgeTypeDefault  EdgeType = "default"
	EdgeTypeCritical EdgeType = "critical"
	EdgeTypeOptional EdgeType = "optional"
)

// Valid reports whether t is a known edge type. Empty is valid.
func (t EdgeType) Valid() bool {
	switch t {
	case "", EdgeTypeDefault, EdgeTypeCritical, EdgeTypeOptional:
		return true
	}
	return false
}

// Resources is the compute footprint of a node in abstract units.
type Resources struct {
	CPU    float64 `json:"cpu" yaml:"cpu" toml:"cpu" bson:"cpu"`
	Memory float64 `json:"memory" yaml:"memory" toml:"memory" bson:"memory"`
}

// Node is a job, stage or environment in a pipeline graph.
type Node struct {
	ID        string         `json:"id" yaml:"id" toml:"id" bson:"id"`
	Name      string         `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Type      NodeType       `json:"type" yaml:"type" toml:"type" bson:"type"`
	Status    Status         `json:"status" yaml:"status" toml:"status" bson:"status"`
	Platform  Platform       `json:"platform" yaml:"platform" toml:"platform" bson:"platform"`
	Duration  *int           `json:"duration,omitempty" yaml:"duration,omitempty" toml:"duration,omitempty" bson:"duration,omitempty"` // seconds
	StartTime *time.Time     `json:"startTime,omitempty" yaml:"startTime,omitempty" toml:"startTime,omitempty" bson:"start_time,omitempty"`
	EndTime   *time.Time     `json:"endTime,omitempty" yaml:"endTime,omitempty" toml:"endTime,omitempty" bson:"end_time,omitempty"`
	Resources *Resources     `json:"resources,omitempty" yaml:"resources,omitempty" toml:"resources,omitempty" bson:"resources,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata,omitempty" bson:"metadata,omitempty"`
}

// HasDuration reports whether the node carries a duration.
func (n *Node) HasDuration() bool { return n.Duration != nil }

// Seconds returns the duration in seconds, or 0 when absent.
func (n *Node) Seconds() int {
	if n.Duration == nil {
		return 0
	}
	return *n.Duration
}

// DisplayName returns the name if set, otherwise the ID.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Seconds returns a pointer to s, for building nodes with a duration.
func Seconds(s int) *int { return &s }

// Edge is a directed dependency: Target runs after Source.
type Edge struct {
	ID       string   `json:"id" yaml:"id" toml:"id" bson:"id"`
	Source   string   `json:"source" yaml:"source" toml:"source" bson:"source"`
	Target   string   `json:"target" yaml:"target" toml:"target" bson:"target"`
	Type     EdgeType `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty" bson:"type,omitempty"`
	Label    string   `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty" bson:"label,omitempty"`
	Animated bool     `json:"animated,omitempty" yaml:"animated,omitempty" toml:"animated,omitempty" bson:"animated,omitempty"`
}

// Kind returns the edge type, defaulting to EdgeTypeDefault.
func (e *Edge) Kind() EdgeType {
	if e.Type == "" {
		return EdgeTypeDefault
	}
	return e.Type
}

// IsCritical reports whether the edge is tagged critical.
func (e *Edge) IsCritical() bool { return e.Type == EdgeTypeCritical }

// Ref returns the edge ID, or "source->target" when the ID is empty.
func (e *Edge) Ref() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Source + "->" + e.Target
}

// Graph is one pipeline snapshot. Order of Nodes and Edges is significant.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes" toml:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges" toml:"edges" bson:"edges"`
}

// Node returns the first node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// NodeIndex maps node IDs to their first position in Nodes.
func (g *Graph) NodeIndex() map[string]int {
	m := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if _, dup := m[n.ID]; !dup {
			m[n.ID] = i
		}
	}
	return m
}

// Clone returns a deep copy of the node and edge slices. Pointer fields
// and metadata maps are shared; graphs are treated as immutable once loaded.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}
