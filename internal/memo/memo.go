// Package memo caches pure computations by key.
//
// A Cache never invalidates: keys must capture every input of the
// computation. Concurrent calls for the same missing key share one
// computation. Failed computations are not cached.
package memo

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes computations of V keyed by K.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V
	hits    int
	misses  int
	group   singleflight.Group
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// Get returns the cached value for key, computing it on a miss.
func (c *Cache[K, V]) Get(key K, compute func() (V, error)) (V, error) {
	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	res, err, _ := c.group.Do(fmt.Sprintf("%#v", key), func() (any, error) {
		v, err := compute()
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		c.entries[key] = v
		c.misses++
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the number of hits and computed misses so far.
func (c *Cache[K, V]) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
