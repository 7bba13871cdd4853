package indx

import (
	"context"
	"time"
)

// CacheStore is a generic key-to-bytes store with per-entry TTL. The query
// layer uses it for result caching; entries expire by TTL only, no explicit
// invalidation happens on writes.
type CacheStore interface {
	// Get returns the cached value and whether the key was present and
	// unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key from the cache. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}
