// Package cache keeps catalog responses (search results and episode lists)
// close to the relay so repeated lookups do not hit the backend.
//
// Two providers are registered: "memory", a per-process LRU with TTL, and
// "redis", which shares entries between relay replicas.
package cache

import (
	"context"
	"time"
)

// opTimeout bounds a single backend operation.
const opTimeout = 2 * time.Second

// Cache is a byte-oriented key/value store with LRU and TTL semantics.
// Implementations never return errors from Get or Set: a failing backend
// behaves like an empty cache and logs the failure.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	// Len returns the number of tracked entries.
	Len(ctx context.Context) int
	Close() error
}
