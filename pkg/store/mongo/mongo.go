// Package mongo stores nodes in a MongoDB collection.
//
// Each node is one document whose _id is derived from the node identity, so
// repeated crawls update documents instead of duplicating them:
//
//	{
//	  "_id": "9f2c4e1a7b3d5e60",
//	  "node": {"type": "ss", "name": "hk", "server": "1.2.3.4", "port": 443, ...},
//	  "run_id": "5b0c...",
//	  "seq": 12,
//	  "first_seen": ISODate(...),
//	  "seen_at": ISODate(...)
//	}
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/nodecrawl/pkg/node"
	"github.com/matzehuels/nodecrawl/pkg/store"
)

// Config selects the server and collection.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// Store is a [store.Store] backed by MongoDB.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

type document struct {
	ID        string    `bson:"_id"`
	Node      node.Node `bson:"node"`
	RunID     string    `bson:"run_id"`
	Seq       int       `bson:"seq"`
	FirstSeen time.Time `bson:"first_seen,omitempty"`
	SeenAt    time.Time `bson:"seen_at"`
}

// NewStore connects to cfg.URI and verifies the connection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	// Nested config values decode as maps so they round-trip through JSON.
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		now:    time.Now,
	}, nil
}

// DocumentID returns the _id used for n: the hex xxhash of its identity key.
func DocumentID(n node.Node) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(n.Key().String()))
}

// Save upserts nodes. seen_at and run_id are refreshed on every sighting;
// first_seen is set only when the document is created.
func (s *Store) Save(ctx context.Context, runID string, nodes []node.Node) error {
	if len(nodes) == 0 {
		return nil
	}
	models := writeModels(runID, nodes, s.now().UTC())
	if _, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("save %d nodes: %w", len(nodes), err)
	}
	return nil
}

func writeModels(runID string, nodes []node.Node, now time.Time) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(nodes))
	for i, n := range nodes {
		id := DocumentID(n)
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "_id", Value: id}}).
			SetUpdate(bson.D{
				{Key: "$set", Value: bson.D{
					{Key: "node", Value: n},
					{Key: "run_id", Value: runID},
					{Key: "seq", Value: i},
					{Key: "seen_at", Value: now},
				}},
				{Key: "$setOnInsert", Value: bson.D{{Key: "first_seen", Value: now}}},
			}).
			SetUpsert(true))
	}
	return models
}

// List returns all stored nodes ordered by seen_at, then by position within
// the run that last saw them.
func (s *Store) List(ctx context.Context) ([]node.Node, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seen_at", Value: 1}, {Key: "seq", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode nodes: %w", err)
	}
	nodes := make([]node.Node, len(docs))
	for i, d := range docs {
		nodes[i] = d.Node
	}
	return nodes, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)
