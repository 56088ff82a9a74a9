package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/orrery/pkg/planet"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "orrery"
	DefaultMongoCollection = "snapshots"
)

// MongoConfig configures [NewMongoStore].
type MongoConfig struct {
	// URI is a MongoDB connection string, e.g. mongodb://localhost:27017.
	URI string

	// Database and Collection default to "orrery" and "snapshots".
	Database   string
	Collection string

	// Timeout bounds connection setup. Zero means 10s.
	Timeout time.Duration
}

// MongoStore stores snapshots in a MongoDB collection. Expiry is enforced
// by a TTL index on expires_at and checked again on read.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoDoc is the stored document. Encoded JSON is kept as strings so the
// documents stay readable in the shell.
type mongoDoc struct {
	ID        string       `bson:"_id"`
	Hash      string       `bson:"hash"`
	InputHash string       `bson:"input_hash"`
	Options   string       `bson:"options,omitempty"`
	Stats     planet.Stats `bson:"stats"`
	Mode      planet.Mode  `bson:"mode"`
	System    string       `bson:"system"`
	CreatedAt time.Time    `bson:"created_at"`
	ExpiresAt time.Time    `bson:"expires_at"`
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures
// the collection's indexes.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{Keys: bson.D{{Key: "hash", Value: 1}}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create mongo indexes: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := checkID(snap.ID); err != nil {
		return err
	}
	doc := mongoDoc{
		ID:        snap.ID,
		Hash:      snap.Hash,
		InputHash: snap.InputHash,
		Options:   string(snap.Options),
		Stats:     snap.Stats,
		Mode:      snap.Mode,
		System:    string(snap.System),
		CreatedAt: snap.CreatedAt,
		ExpiresAt: snap.ExpiresAt,
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": snap.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	snap := &Snapshot{
		ID:        doc.ID,
		Hash:      doc.Hash,
		InputHash: doc.InputHash,
		Stats:     doc.Stats,
		Mode:      doc.Mode,
		System:    []byte(doc.System),
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
	}
	if doc.Options != "" {
		snap.Options = []byte(doc.Options)
	}
	// The TTL monitor runs about once a minute.
	if snap.IsExpired() {
		return nil, notFound(id)
	}
	return snap, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return nil
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
