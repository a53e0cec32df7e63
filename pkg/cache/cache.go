// Package cache provides byte-level caching of GitHub API responses.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entries on disk, for CLI use (~/.cache/nodecrawl)
//   - [RedisCache]: shared cache for several crawler instances
//   - [NullCache]: disables caching
//
// Keys are produced by a [Keyer] so that tree listings and file contents never
// collide, and so that callers can scope keys (for example per access token)
// with [ScopedKeyer].
package cache

import (
	"context"
	"time"
)

// DefaultTTL applies to tree listings and file bodies alike when no cache.ttl
// is configured. Both are fetched at a moving branch head.
const DefaultTTL = time.Hour

// Cache stores opaque byte values under string keys.
//
// Get distinguishes a miss (false, nil) from a failure (false, err).
// A ttl of zero passed to Set means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
