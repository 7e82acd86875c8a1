// Package memory provides a process-lifetime in-memory query cache. Entries
// are never evicted and never expire; the cache grows monotonically until the
// process exits.
package memory

import (
	"sync"

	"github.com/natejswenson/gizmo/pkg/swapi"
)

// Cache is a mutex-guarded map from cache key to query result.
type Cache struct {
	mu      sync.Mutex
	entries map[string]swapi.Result
	hits    int64
	misses  int64
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]swapi.Result)}
}

// Get returns the cached result for key, if present.
func (c *Cache) Get(key string) (swapi.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return res, ok
}

// Put stores res under key, replacing any previous entry. It never fails.
func (c *Cache) Put(key string, res swapi.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = res
	return nil
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counters since construction.
func (c *Cache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
