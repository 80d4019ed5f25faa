// Package cache provides the artifact cache used by the render pipeline.
//
// Rendered charts are stored as opaque bytes under keys derived from the
// content hash of the dataset they were computed from, so a changed source
// never serves a stale chart. Three backends are available:
//
//   - [NullCache]: disables caching
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for several dashboard instances
//
// Keys are built by a [Keyer]; [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Cache stores byte values with an optional expiration.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default expirations per entry kind.
const (
	TTLView     = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// NullCache never stores anything. It is used when caching is disabled and
// by tests that must always recompute.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
