package source

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/graph"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "pipegraph"
	DefaultMongoCollection = "snapshots"
)

// MongoConfig configures a MongoSource.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	// SnapshotID pins Load to one document. Empty loads the most recent.
	SnapshotID string
	Validate   []graph.ValidateOption
}

// MongoSource loads snapshot documents from a MongoDB collection. Documents
// have the shape {_id, name, origin, loaded_at, graph}.
type MongoSource struct {
	client *mongo.Client
	coll   *mongo.Collection
	cfg    MongoConfig
}

type snapshotDoc struct {
	ID       string      `bson:"_id"`
	Name     string      `bson:"name"`
	Origin   string      `bson:"origin,omitempty"`
	LoadedAt time.Time   `bson:"loaded_at"`
	Graph    graph.Graph `bson:"graph"`
}

// NewMongo connects to MongoDB and pings the server.
func NewMongo(ctx context.Context, cfg MongoConfig) (*MongoSource, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo source: uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	if cfg.SnapshotID != "" {
		if _, err := uuid.Parse(cfg.SnapshotID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "snapshot id %q", cfg.SnapshotID)
		}
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	return &MongoSource{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		cfg:    cfg,
	}, nil
}

// Load fetches the pinned snapshot, or the most recently stored one.
// The snapshot keeps its stored ID.
func (s *MongoSource) Load(ctx context.Context) (Snapshot, error) {
	filter := bson.D{}
	opts := options.FindOne().SetSort(bson.D{{Key: "loaded_at", Value: -1}})
	if s.cfg.SnapshotID != "" {
		filter = bson.D{{Key: "_id", Value: s.cfg.SnapshotID}}
	}

	var doc snapshotDoc
	err := s.coll.FindOne(ctx, filter, opts).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Snapshot{}, errors.New(errors.ErrCodeSnapshotNotFound, "no snapshot in %s", s)
	}
	if err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeNetwork, err, "load snapshot")
	}

	if err := graph.Prepare(&doc.Graph, s.cfg.Validate...); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", doc.ID, err)
	}
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "stored snapshot id %q", doc.ID)
	}
	return Snapshot{
		ID:       id,
		Name:     doc.Name,
		Origin:   s.String(),
		LoadedAt: doc.LoadedAt,
		Graph:    doc.Graph,
	}, nil
}

// Save stores snap, replacing any document with the same ID.
func (s *MongoSource) Save(ctx context.Context, snap Snapshot) error {
	doc := snapshotDoc{
		ID:       snap.ID.String(),
		Name:     snap.Name,
		Origin:   snap.Origin,
		LoadedAt: snap.LoadedAt,
		Graph:    snap.Graph,
	}
	_, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "save snapshot %s", doc.ID)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoSource) String() string {
	return describe(KindMongo, s.cfg.Database+"."+s.cfg.Collection)
}
