package graph

import (
	"github.com/matzehuels/pipegraph/pkg/errors"
)

type validateConfig struct {
	rejectDangling bool
}

// ValidateOption configures Validate.
type ValidateOption func(*validateConfig)

// RejectDanglingEdges makes Validate fail with DANGLING_EDGE when an edge
// references a node that is not in the graph.
func RejectDanglingEdges() ValidateOption {
	return func(c *validateConfig) { c.rejectDangling = true }
}

// Normalize fills defaults in place: empty statuses become unknown, empty
// edge types become default and empty edge IDs become "source->target".
func Normalize(g *Graph) {
	for i := range g.Nodes {
		if g.Nodes[i].Status == "" {
			g.Nodes[i].Status = StatusUnknown
		}
	}
	for i := range g.Edges {
		e := &g.Edges[i]
		if e.Type == "" {
			e.Type = EdgeTypeDefault
		}
		if e.ID == "" {
			e.ID = e.Source + "->" + e.Target
		}
	}
}

// Validate checks required fields and enum values and returns the first
// violation as a coded error.
func Validate(g Graph, opts ...ValidateOption) error {
	var cfg validateConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	seen := make(map[string]struct{}, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if err := errors.ValidateID("node", n.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %d", i)
		}
		if _, dup := seen[n.ID]; dup {
			return errors.New(errors.ErrCodeDuplicateNode, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}

		if !n.Type.Valid() {
			return enumError("node", n.ID, "type", string(n.Type))
		}
		if !n.Status.Valid() {
			return enumError("node", n.ID, "status", string(n.Status))
		}
		if !n.Platform.Valid() {
			return enumError("node", n.ID, "platform", string(n.Platform))
		}
		if n.Duration != nil && *n.Duration < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "node %q: negative duration %d", n.ID, *n.Duration)
		}
		if n.Resources != nil && (n.Resources.CPU < 0 || n.Resources.Memory < 0) {
			return errors.New(errors.ErrCodeInvalidInput, "node %q: negative resources", n.ID)
		}
		if n.StartTime != nil && n.EndTime != nil && n.EndTime.Before(*n.StartTime) {
			return errors.New(errors.ErrCodeInvalidInput, "node %q: endTime before startTime", n.ID)
		}
	}

	for i := range g.Edges {
		e := &g.Edges[i]
		if e.Source == "" || e.Target == "" {
			return errors.New(errors.ErrCodeInvalidInput, "edge %q: source and target are required", e.Ref())
		}
		if !e.Type.Valid() {
			return enumError("edge", e.Ref(), "type", string(e.Type))
		}
		if !cfg.rejectDangling {
			continue
		}
		if _, ok := seen[e.Source]; !ok {
			return errors.New(errors.ErrCodeDanglingEdge, "edge %q: unknown source %q", e.Ref(), e.Source)
		}
		if _, ok := seen[e.Target]; !ok {
			return errors.New(errors.ErrCodeDanglingEdge, "edge %q: unknown target %q", e.Ref(), e.Target)
		}
	}
	return nil
}

// Prepare normalizes g and validates it. Every loader calls it before
// handing a graph to the rest of the system.
func Prepare(g *Graph, opts ...ValidateOption) error {
	Normalize(g)
	return Validate(*g, opts...)
}

func enumError(kind, id, field, value string) error {
	return errors.New(errors.ErrCodeInvalidEnum, "%s %q: unknown %s %q", kind, id, field, value)
}
