package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/sample"
)

func TestBuiltin(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		nodes int
	}{
		{"sample", 9},
		{"expanded", 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Builtin(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			a, err := src.Load(ctx)
			if err != nil {
				t.Fatal(err)
			}
			b, _ := src.Load(ctx)
			if len(a.Graph.Nodes) != tt.nodes {
				t.Errorf("nodes = %d, want %d", len(a.Graph.Nodes), tt.nodes)
			}
			if a.ID == b.ID || a.ID == uuid.Nil {
				t.Errorf("snapshot ids not unique: %s %s", a.ID, b.ID)
			}
			if a.Name != tt.name || a.LoadedAt.IsZero() {
				t.Errorf("snapshot = %+v", a)
			}
		})
	}

	if _, err := Builtin("nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Builtin(nope) = %v", err)
	}
}

func TestBuiltinCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src, _ := Builtin("sample")
	if _, err := src.Load(ctx); err != context.Canceled {
		t.Errorf("Load = %v, want context.Canceled", err)
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ci.yaml")
	if err := graph.WriteFile(sample.Pipeline(), path); err != nil {
		t.Fatal(err)
	}

	src, err := NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := src.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Name != "ci" || len(snap.Graph.Edges) != 12 {
		t.Errorf("snapshot name=%q edges=%d", snap.Name, len(snap.Graph.Edges))
	}
	if !strings.HasPrefix(src.String(), "file:") || src.Path() != path {
		t.Errorf("String() = %q Path() = %q", src.String(), src.Path())
	}
}

func TestFileStrict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.json")
	data := `{"nodes":[{"id":"a","type":"job","status":"success","platform":"github"}],
	          "edges":[{"id":"e","source":"a","target":"ghost"}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	lenient, _ := NewFile(path)
	if _, err := lenient.Load(context.Background()); err != nil {
		t.Errorf("lenient Load: %v", err)
	}
	strict, _ := Open(context.Background(), Config{Path: path, Strict: true})
	if _, err := strict.Load(context.Background()); !errors.Is(err, errors.ErrCodeDanglingEdge) {
		t.Errorf("strict Load = %v, want DANGLING_EDGE", err)
	}
}

func TestNewFileErrors(t *testing.T) {
	tests := []struct {
		path string
		want errors.Code
	}{
		{"", errors.ErrCodeInvalidPath},
		{"../etc/graph.json", errors.ErrCodeInvalidPath},
		{"graph.xml", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		if _, err := NewFile(tt.path); !errors.Is(err, tt.want) {
			t.Errorf("NewFile(%q) = %v, want %s", tt.path, err, tt.want)
		}
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"Default", Config{}, "sample:builtin"},
		{"Expanded", Config{Kind: KindExpanded}, "expanded:builtin"},
		{"PathImpliesFile", Config{Path: "x.toml"}, "file:x.toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Open(ctx, tt.cfg)
			if err != nil {
				t.Fatal(err)
			}
			if src.String() != tt.want {
				t.Errorf("String() = %q, want %q", src.String(), tt.want)
			}
			if err := Close(ctx, src); err != nil {
				t.Errorf("Close: %v", err)
			}
		})
	}

	if _, err := Open(ctx, Config{Kind: "ftp"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Open(ftp) = %v", err)
	}
	if _, err := Open(ctx, Config{Kind: KindMongo}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Open(mongo without uri) = %v", err)
	}
}
