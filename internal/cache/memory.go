package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", newMemoryCache)
}

type memoryCache struct {
	entries *lru.LRU[string, []byte]
}

func newMemoryCache(opts Options) (Cache, error) {
	var onEvict lru.EvictCallback[string, []byte]
	if opts.evicted != nil {
		evicted := opts.evicted
		onEvict = func(key string, _ []byte) { evicted(key) }
	}
	return &memoryCache{entries: lru.NewLRU[string, []byte](opts.Size, onEvict, opts.TTL)}, nil
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	return m.entries.Get(key)
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte) {
	m.entries.Add(key, value)
}

func (m *memoryCache) Len(context.Context) int {
	return m.entries.Len()
}

func (m *memoryCache) Close() error {
	return nil
}
