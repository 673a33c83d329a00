package source

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/graph"
)

// FileSource reads a graph file on every Load.
type FileSource struct {
	path string
	opts []graph.ValidateOption
}

// NewFile returns a source for the graph file at path. The format must be
// inferable from the extension.
func NewFile(path string, opts ...graph.ValidateOption) (*FileSource, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	if _, err := graph.FormatFromPath(path); err != nil {
		return nil, err
	}
	return &FileSource{path: path, opts: opts}, nil
}

// Path returns the file path, for watching.
func (s *FileSource) Path() string { return s.path }

// Load reads and validates the file.
func (s *FileSource) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	g, err := graph.ReadFile(s.path, s.opts...)
	if err != nil {
		return Snapshot{}, err
	}
	name := strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path))
	return NewSnapshot(name, s.String(), g), nil
}

func (s *FileSource) String() string { return describe(KindFile, s.path) }
