// Package cache provides byte-oriented caches for rendered math.
//
// The formatting core never caches. Rendering results are cached only when a
// caller wraps its renderer with render.Cached, which stores successful
// renderings through one of the backends in this package:
//
//   - [NullCache]: never stores anything (the default)
//   - [FileCache]: JSON files under a directory, for CLI use
//   - [RedisCache]: a shared Redis instance, for the HTTP API
//
// Keys are produced by a [Keyer] so that backends never see raw TeX.
package cache

import (
	"context"
	"time"
)

// TTLRender is the default lifetime of a cached rendering.
const TTLRender = 24 * time.Hour

// Cache stores opaque byte payloads under string keys.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the payload for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
