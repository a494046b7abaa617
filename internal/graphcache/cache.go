// Package graphcache caches topological sort results keyed by the set of
// facet kinds in the graph. Because a kind set always declares the same
// dependency edges within one program, the cached order (or cached failure)
// can be replayed without re-sorting. The cache is a bounded LRU and may be
// shared across containers.
package graphcache

import (
	"sort"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity bounds a cache created without an explicit size.
const DefaultCapacity = 128

// Entry is a cached sort outcome: either the resolved order or the error the
// sort produced. Err is re-surfaced verbatim on every hit.
type Entry struct {
	OrderedKinds []string
	Err          error
}

// Cache is a bounded, thread-safe LRU of sort outcomes. Lookups move the
// entry to most-recently-used; inserts at capacity evict the least-recently
// used entry.
type Cache struct {
	lru    *lru.Cache[string, *Entry]
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache holding at most capacity entries. A non-positive
// capacity falls back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	// lru.New only errors on non-positive size, which is guarded above.
	inner, _ := lru.New[string, *Entry](capacity)
	return &Cache{lru: inner}
}

// Key canonicalizes a kind set into a cache key: the kinds sorted and joined
// with commas. The input slice is not modified.
func Key(kinds []string) string {
	sorted := make([]string, len(kinds))
	copy(sorted, kinds)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// Get returns the cached entry for the key, marking it most-recently-used.
func (c *Cache) Get(key string) (*Entry, bool) {
	e, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return e, ok
}

// Put stores an entry, evicting the least-recently-used entry if at capacity.
func (c *Cache) Put(key string, e *Entry) {
	c.lru.Add(key, e)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Hits returns the number of successful lookups since creation.
func (c *Cache) Hits() int64 {
	return c.hits.Load()
}

// Misses returns the number of failed lookups since creation.
func (c *Cache) Misses() int64 {
	return c.misses.Load()
}
