// Package cache keeps recently computed feature reports keyed by content.
package cache

import (
	"fmt"
	"time"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/codefeat/internal/analysis"
)

// Stats reports cache effectiveness since construction.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// Cache is a bounded, content-addressed store of feature reports.
// A nil *Cache is a valid, always-empty cache.
type Cache struct {
	store otter.Cache[string, *analysis.CodeFeatures]
}

// New creates a cache holding up to capacity reports. A positive ttl expires
// entries that long after they were written; zero keeps them until evicted.
func New(capacity int, ttl time.Duration) (*Cache, error) {
	builder, err := otter.NewBuilder[string, *analysis.CodeFeatures](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to configure feature cache: %w", err)
	}
	builder = builder.CollectStats()

	var store otter.Cache[string, *analysis.CodeFeatures]
	if ttl > 0 {
		store, err = builder.WithTTL(ttl).Build()
	} else {
		store, err = builder.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build feature cache: %w", err)
	}

	return &Cache{store: store}, nil
}

// Get returns a copy of the report cached for source analyzed as lang.
func (c *Cache) Get(lang string, source []byte) (*analysis.CodeFeatures, bool) {
	if c == nil {
		return nil, false
	}

	features, ok := c.store.Get(Key(lang, source))
	if !ok {
		return nil, false
	}
	return features.Clone(), true
}

// Set stores a copy of features, so later changes by the caller do not leak in.
func (c *Cache) Set(lang string, source []byte, features *analysis.CodeFeatures) {
	if c == nil || features == nil {
		return
	}
	c.store.Set(Key(lang, source), features.Clone())
}

// Len returns the number of cached reports.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.store.Size()
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	s := c.store.Stats()
	return Stats{Hits: s.Hits(), Misses: s.Misses()}
}

// Close stops the cache's background goroutines.
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.store.Close()
}
