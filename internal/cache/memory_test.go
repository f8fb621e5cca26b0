package cache

import (
	"context"
	"testing"
	"time"
)

func newTestMemoryCache(t *testing.T, opts Options) Cache {
	t.Helper()
	c, err := New("memory", opts)
	if err != nil {
		t.Fatalf("New memory cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := newTestMemoryCache(t, Options{Size: 10, TTL: time.Hour})

	if _, ok := c.Get(ctx, "search:naruto"); ok {
		t.Fatal("Expected miss on empty cache")
	}

	c.Set(ctx, "search:naruto", []byte(`[{"id":"20"}]`))
	got, ok := c.Get(ctx, "search:naruto")
	if !ok {
		t.Fatal("Expected hit after Set")
	}
	if string(got) != `[{"id":"20"}]` {
		t.Errorf("Unexpected value %q", got)
	}

	c.Set(ctx, "search:naruto", []byte(`[]`))
	if got, _ := c.Get(ctx, "search:naruto"); string(got) != `[]` {
		t.Errorf("Expected overwrite, got %q", got)
	}
	if n := c.Len(ctx); n != 1 {
		t.Errorf("Expected 1 entry, got %d", n)
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	var evicted []string
	c, err := newMemoryCache(Options{Size: 2, TTL: time.Hour, evicted: func(key string) {
		evicted = append(evicted, key)
	}})
	if err != nil {
		t.Fatalf("newMemoryCache: %v", err)
	}

	c.Set(ctx, "episodes:1", []byte("a"))
	c.Set(ctx, "episodes:2", []byte("b"))
	// Reading episodes:1 makes episodes:2 the eviction candidate
	_, _ = c.Get(ctx, "episodes:1")
	c.Set(ctx, "episodes:3", []byte("c"))

	if _, ok := c.Get(ctx, "episodes:2"); ok {
		t.Error("Expected episodes:2 to be evicted")
	}
	if _, ok := c.Get(ctx, "episodes:1"); !ok {
		t.Error("Expected episodes:1 to survive")
	}
	if len(evicted) != 1 || evicted[0] != "episodes:2" {
		t.Errorf("Unexpected evictions %v", evicted)
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	c := newTestMemoryCache(t, Options{Size: 10, TTL: 50 * time.Millisecond})

	c.Set(ctx, "search:bleach", []byte("x"))
	time.Sleep(120 * time.Millisecond)

	if _, ok := c.Get(ctx, "search:bleach"); ok {
		t.Error("Expected entry to expire")
	}
}
