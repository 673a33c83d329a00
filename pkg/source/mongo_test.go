package source

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/sample"
)

// mongoURI returns the test server URI or skips the test.
func mongoURI(t *testing.T) string {
	t.Helper()
	uri := os.Getenv("PIPEGRAPH_MONGO_URI")
	if uri == "" {
		t.Skip("PIPEGRAPH_MONGO_URI not set")
	}
	return uri
}

func TestMongoSaveLoad(t *testing.T) {
	uri := mongoURI(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	coll := "test_" + uuid.NewString()[:8]
	store, err := NewMongo(ctx, MongoConfig{URI: uri, Collection: coll})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = store.coll.Drop(ctx)
		_ = store.Close(ctx)
	}()

	if _, err := store.Load(ctx); !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
		t.Fatalf("Load(empty) = %v, want SNAPSHOT_NOT_FOUND", err)
	}

	older := NewSnapshot("older", "test", sample.Pipeline())
	older.LoadedAt = older.LoadedAt.Add(-time.Hour).Truncate(time.Millisecond)
	newer := NewSnapshot("newer", "test", sample.Expanded())
	newer.LoadedAt = newer.LoadedAt.Truncate(time.Millisecond)
	for _, s := range []Snapshot{older, newer} {
		if err := store.Save(ctx, s); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	latest, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != newer.ID || len(latest.Graph.Nodes) != 14 {
		t.Errorf("latest = %s with %d nodes", latest.ID, len(latest.Graph.Nodes))
	}
	if d := latest.Graph.Nodes[0].Seconds(); d != 245 {
		t.Errorf("duration round trip = %d", d)
	}

	pinned, err := NewMongo(ctx, MongoConfig{URI: uri, Collection: coll, SnapshotID: older.ID.String()})
	if err != nil {
		t.Fatal(err)
	}
	defer pinned.Close(ctx)
	snap, err := pinned.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Name != "older" || len(snap.Graph.Nodes) != 9 {
		t.Errorf("pinned = %q with %d nodes", snap.Name, len(snap.Graph.Nodes))
	}
}

func TestNewMongoValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewMongo(ctx, MongoConfig{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("no uri: %v", err)
	}
	if _, err := NewMongo(ctx, MongoConfig{URI: "mongodb://localhost", SnapshotID: "nope"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad snapshot id: %v", err)
	}
}
