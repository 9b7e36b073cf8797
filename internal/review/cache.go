package review

import (
	"github.com/mmcdole/culler/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

// PrefetchCache holds renditions for items just ahead of the current one.
// Entries are consumed exactly once: Get removes on hit. Capacity is a hard
// bound; inserting past it drops the oldest entry.
type PrefetchCache struct {
	entries *lru.Cache[string, *domain.Rendition]
}

// NewPrefetchCache creates a cache holding at most capacity renditions
func NewPrefetchCache(capacity int) *PrefetchCache {
	if capacity < 1 {
		capacity = 1
	}
	entries, _ := lru.New[string, *domain.Rendition](capacity)
	return &PrefetchCache{entries: entries}
}

// Get returns and removes the rendition for id
func (c *PrefetchCache) Get(id string) (*domain.Rendition, bool) {
	r, ok := c.entries.Peek(id)
	if !ok {
		return nil, false
	}
	c.entries.Remove(id)
	return r, true
}

// Put inserts or overwrites the rendition for id
func (c *PrefetchCache) Put(id string, r *domain.Rendition) {
	c.entries.Add(id, r)
}

func (c *PrefetchCache) Has(id string) bool {
	return c.entries.Contains(id)
}

func (c *PrefetchCache) Purge() {
	c.entries.Purge()
}

func (c *PrefetchCache) Len() int {
	return c.entries.Len()
}

// Keys returns resident identifiers, oldest first
func (c *PrefetchCache) Keys() []string {
	return c.entries.Keys()
}
