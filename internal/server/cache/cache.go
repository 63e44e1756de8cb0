// Package cache holds rendered read responses of the leads API.
// Entries expire after a TTL and the whole cache is flushed whenever the
// session changes, so readers never see a view older than the last mutation.
package cache

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Keys for cached views.
const (
	KeyWorkbook = "workbook"
	KeySession  = "session"
)

// CategoryKey returns the key of a category view filtered by term.
func CategoryKey(name, term string) string {
	return "category:" + name + "?q=" + term
}

// Cache wraps go-cache.
type Cache struct {
	store   *gocache.Cache
	flushes atomic.Int64
}

// New creates a cache with the given TTL and cleanup interval.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the cache.
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// Remember returns the cached value for key, or computes, stores and
// returns it. Errors are not cached.
func (c *Cache) Remember(key string, fn func() (any, error)) (any, error) {
	if v, ok := c.store.Get(key); ok {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		return nil, err
	}
	c.store.Set(key, v, gocache.DefaultExpiration)
	return v, nil
}

// Delete removes a value from the cache.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.store.Flush()
	c.flushes.Add(1)
}

// ItemCount returns the number of items in the cache.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

// Stats returns cache statistics.
type Stats struct {
	ItemCount int   `json:"item_count"`
	Flushes   int64 `json:"flushes"`
}

// GetStats returns current cache statistics.
func (c *Cache) GetStats() Stats {
	return Stats{
		ItemCount: c.store.ItemCount(),
		Flushes:   c.flushes.Load(),
	}
}
