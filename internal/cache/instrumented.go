package cache

import "context"

// instrumentedCache counts hits and misses of inner under group and reports
// its size through the entries collector.
type instrumentedCache struct {
	inner Cache
	group string
}

func newInstrumentedCache(inner Cache, group string) *instrumentedCache {
	c := &instrumentedCache{inner: inner, group: group}
	entries.track(group, inner)
	return c
}

func (c *instrumentedCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, ok := c.inner.Get(ctx, key)
	if ok {
		HitsTotal.WithLabelValues(c.group).Inc()
	} else {
		MissesTotal.WithLabelValues(c.group).Inc()
	}
	return value, ok
}

func (c *instrumentedCache) Set(ctx context.Context, key string, value []byte) {
	c.inner.Set(ctx, key, value)
}

func (c *instrumentedCache) Len(ctx context.Context) int {
	return c.inner.Len(ctx)
}

func (c *instrumentedCache) Close() error {
	entries.untrack(c.group, c.inner)
	return c.inner.Close()
}
