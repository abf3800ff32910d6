// Package cache provides byte caches for expensive extraction work.
//
// Every backend implements [Cache]:
//   - [FileCache]: one file per entry, for the CLI
//   - [LRUCache]: bounded in-process cache, for the server
//   - [RedisCache]: shared cache for several server instances
//   - [NullCache]: caching disabled
//
// [Compressed] and [Instrumented] wrap any backend to snappy-compress
// entries and to report hits and misses to the observability hooks.
//
// Keys are built by a [Keyer] so that every component agrees on them:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.ExtractionKey("pathlinker", cache.Hash(sliceJSON), opts)
package cache

import (
	"context"
	"time"
)

// Cache stores opaque bytes under string keys.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// ExtractionKeyOpts are the service settings that change an extraction
// result.
type ExtractionKeyOpts struct {
	Sources []string
	Targets []string
	Params  map[string]any
}

// Keyer builds cache keys.
type Keyer interface {
	// ExtractionKey identifies the answer of service on a slice whose
	// serialized graph hashes to sliceHash.
	ExtractionKey(service, sliceHash string, opts ExtractionKeyOpts) string
}

// DefaultKeyer implements Keyer with readable prefixes and hashed options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ExtractionKey implements Keyer.
func (DefaultKeyer) ExtractionKey(service, sliceHash string, opts ExtractionKeyOpts) string {
	return hashKey("extract:"+service, sliceHash, sorted(opts.Sources), sorted(opts.Targets), opts.Params)
}
