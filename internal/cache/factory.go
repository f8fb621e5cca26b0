package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a cache instance.
type Options struct {
	// Size is the maximum number of entries.
	Size int
	// TTL is how long an entry lives after it was written.
	TTL time.Duration

	Logger zerolog.Logger

	RedisAddress  string
	RedisPassword string
	RedisDB       int
	// KeyPrefix namespaces Redis keys; defaults to "relay:".
	KeyPrefix string

	// Group labels the relay_cache_* metrics. When empty the cache is not
	// instrumented.
	Group string

	// evicted is called with the key of every entry dropped for capacity or,
	// where the provider notices it, expiry.
	evicted func(key string)
}

// Provider builds a Cache from Options.
type Provider func(opts Options) (Cache, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register makes a provider available to New. It panics on a nil provider or
// a duplicate name.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	providers[name] = p
}

// New creates a cache with the named provider. A non-empty opts.Group wraps it
// with hit, miss and eviction counters and exposes its size as
// relay_cache_entries{cache=Group}.
func New(name string, opts Options) (Cache, error) {
	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}
	if opts.Group == "" {
		return p(opts)
	}

	group := opts.Group
	next := opts.evicted
	opts.evicted = func(key string) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if next != nil {
			next(key)
		}
	}

	inner, err := p(opts)
	if err != nil {
		return nil, err
	}
	return newInstrumentedCache(inner, group), nil
}

// RegisteredProviders returns the provider names in sorted order.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
