// Package cache provides the persistent key-value store that fronts the
// resolution pipeline. Values are opaque JSON blobs owned by the caller.
package cache

import (
	"context"
	"strings"
	"time"
)

// Store is a TTL key-value store. Implementations must be safe for
// concurrent use; writes are last-writer-wins.
type Store interface {
	// Get returns the value for key, or ok=false when the key is absent
	// or its entry has expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put stores value under key with the given time-to-live.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Close releases any underlying resources.
	Close() error
}

// Key returns the cache key for an artist name. Keys are case-insensitive:
// "Daft Punk" and "daft punk" share an entry.
func Key(artist string) string {
	return "artist:" + strings.ToLower(artist)
}
