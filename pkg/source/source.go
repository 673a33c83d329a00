// Package source loads pipeline graph snapshots.
//
// A [Source] produces a [Snapshot]: a validated graph plus an identity and a
// load time. Snapshots are immutable; refreshing a source yields a new
// snapshot with a new ID rather than mutating the old one.
//
// Available sources:
//
//   - [Builtin]: the bundled sample and expanded datasets
//   - [File]: a JSON, YAML or TOML file (format by extension)
//   - [Mongo]: a snapshot document in a MongoDB collection
//
// Every source runs [graph.Prepare] on what it loads, so callers never see
// an unvalidated graph.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/graph"
)

// Snapshot is one loaded pipeline graph.
type Snapshot struct {
	ID       uuid.UUID   `json:"id"`
	Name     string      `json:"name"`
	Origin   string      `json:"origin"`
	LoadedAt time.Time   `json:"loaded_at"`
	Graph    graph.Graph `json:"graph"`
}

// NewSnapshot wraps g in a snapshot with a fresh ID.
func NewSnapshot(name, origin string, g graph.Graph) Snapshot {
	return Snapshot{
		ID:       uuid.New(),
		Name:     name,
		Origin:   origin,
		LoadedAt: time.Now().UTC(),
		Graph:    g,
	}
}

// Source loads snapshots.
type Source interface {
	// Load reads the current graph and returns it as a new snapshot.
	Load(ctx context.Context) (Snapshot, error)
	// String describes the source for logs.
	String() string
}

// Kind names a source implementation in configuration.
type Kind string

// Source kinds.
const (
	KindSample   Kind = "sample"
	KindExpanded Kind = "expanded"
	KindFile     Kind = "file"
	KindMongo    Kind = "mongo"
)

// Config selects and configures a source.
type Config struct {
	Kind            Kind   `toml:"kind"`
	Path            string `toml:"path"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	SnapshotID      string `toml:"snapshot_id"`
	// Strict rejects edges that reference unknown nodes.
	Strict bool `toml:"strict"`
}

func (c Config) validateOptions() []graph.ValidateOption {
	if c.Strict {
		return []graph.ValidateOption{graph.RejectDanglingEdges()}
	}
	return nil
}

// Open builds the source described by cfg. An empty kind with a path means
// file; an empty kind without one means sample. Mongo sources connect
// immediately and must be closed by the caller (see [Close]).
func Open(ctx context.Context, cfg Config) (Source, error) {
	kind := cfg.Kind
	if kind == "" {
		kind = KindSample
		if cfg.Path != "" {
			kind = KindFile
		}
	}
	var (
		src Source
		err error
	)
	switch kind {
	case KindSample, KindExpanded:
		src, err = Builtin(string(kind))
	case KindFile:
		src, err = NewFile(cfg.Path, cfg.validateOptions()...)
	case KindMongo:
		src, err = NewMongo(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			SnapshotID: cfg.SnapshotID,
			Validate:   cfg.validateOptions(),
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown source kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

// Close releases resources held by src, if any.
func Close(ctx context.Context, src Source) error {
	if c, ok := src.(interface{ Close(context.Context) error }); ok {
		return c.Close(ctx)
	}
	return nil
}

func describe(kind Kind, detail string) string {
	return fmt.Sprintf("%s:%s", kind, detail)
}
