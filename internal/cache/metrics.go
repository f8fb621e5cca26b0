package cache

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Counters carry a "cache" label set from Options.Group.
var (
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_cache_hits_total",
			Help: "Total number of cache hits.",
		},
		[]string{"cache"},
	)

	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_cache_misses_total",
			Help: "Total number of cache misses.",
		},
		[]string{"cache"},
	)

	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_cache_evictions_total",
			Help: "Total number of entries evicted from the cache.",
		},
		[]string{"cache"},
	)

	entries = newEntriesCollector()
)

func init() {
	prometheus.MustRegister(HitsTotal, MissesTotal, EvictionsTotal, entries)
}

// entriesCollector reports relay_cache_entries for every instrumented cache by
// asking it for its size at scrape time, so entries expired by Redis are not
// counted from a stale in-process gauge.
type entriesCollector struct {
	desc *prometheus.Desc

	mu     sync.RWMutex
	groups map[string]Cache
}

func newEntriesCollector() *entriesCollector {
	return &entriesCollector{
		desc: prometheus.NewDesc(
			"relay_cache_entries",
			"Current number of entries in the cache.",
			[]string{"cache"},
			nil,
		),
		groups: make(map[string]Cache),
	}
}

func (c *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for group, cache := range c.groups {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		size := cache.Len(ctx)
		cancel()
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(size), group)
	}
}

// track replaces any cache previously reported under group.
func (c *entriesCollector) track(group string, cache Cache) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups[group] = cache
}

// untrack stops reporting group if it still belongs to cache.
func (c *entriesCollector) untrack(group string, cache Cache) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.groups[group] == cache {
		delete(c.groups, group)
	}
}
