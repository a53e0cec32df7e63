// Package store persists crawled nodes.
//
// Two implementations exist:
//   - [File]: a JSON nodes file, the same format the crawl writes
//   - mongo.Store: a MongoDB collection upserted by node identity
//
// The serve command reads from whichever is configured.
package store

import (
	"context"

	"github.com/matzehuels/nodecrawl/pkg/node"
)

// Store saves and lists nodes.
type Store interface {
	// Save records the nodes found by run runID. A node already stored under
	// the same identity is never stored twice.
	Save(ctx context.Context, runID string, nodes []node.Node) error

	// List returns the stored nodes, oldest sighting first.
	List(ctx context.Context) ([]node.Node, error)

	Close(ctx context.Context) error
}
