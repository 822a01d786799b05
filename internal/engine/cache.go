package engine

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a TTL cache for backend responses, bounded to maxEntries with
// least-recently-used eviction. A nil lru means caching is disabled.
type Cache[T any] struct {
	lru *expirable.LRU[string, T]
}

// NewCache creates a cache. A ttl <= 0 disables caching and maxEntries <= 0
// leaves it unbounded.
func NewCache[T any](ttl time.Duration, maxEntries int) *Cache[T] {
	if ttl <= 0 {
		return &Cache[T]{}
	}
	return &Cache[T]{lru: expirable.NewLRU[string, T](max(maxEntries, 0), nil, ttl)}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	if c.lru == nil {
		var zero T
		return zero, false
	}
	return c.lru.Get(key)
}

// Set stores value under key.
func (c *Cache[T]) Set(key string, value T) {
	if c.lru == nil {
		return
	}
	c.lru.Add(key, value)
}

// Len reports the number of stored entries.
func (c *Cache[T]) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Errors are not cached.
func (c *Cache[T]) GetOrLoad(key string, load func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}
