package source

import (
	"context"

	"github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/sample"
)

// BuiltinSource serves one of the bundled datasets.
type BuiltinSource struct {
	name string
}

// Builtin returns the bundled dataset with the given name ("sample" or
// "expanded").
func Builtin(name string) (*BuiltinSource, error) {
	if _, ok := sample.ByName(name); !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown built-in dataset %q (have %v)", name, sample.Names)
	}
	return &BuiltinSource{name: name}, nil
}

// Load returns a fresh copy of the dataset.
func (s *BuiltinSource) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	g, _ := sample.ByName(s.name)
	if err := graph.Prepare(&g); err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(s.name, s.String(), g), nil
}

func (s *BuiltinSource) String() string { return describe(Kind(s.name), "builtin") }
