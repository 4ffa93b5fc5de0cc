package matcher

import (
	"sync"
)

type compiled struct {
	matcher Matcher
	err     error
}

// Cache holds compiled patterns so a bulk run compiles each rule once.
// Compile failures are cached too.
type Cache struct {
	mu    sync.RWMutex
	store map[string]compiled
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{
		store: make(map[string]compiled),
	}
}

// Get returns the compiled matcher for p, compiling it on first use.
func (c *Cache) Get(p Pattern) (Matcher, error) {
	key := p.key()

	c.mu.RLock()
	entry, found := c.store[key]
	c.mu.RUnlock()
	if found {
		return entry.matcher, entry.err
	}

	m, err := Compile(p)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = compiled{matcher: m, err: err}
	return m, err
}

// Retain drops every entry whose pattern is not in keep and returns how
// many were dropped.
func (c *Cache) Retain(keep []Pattern) int {
	live := make(map[string]bool, len(keep))
	for _, p := range keep {
		live[p.key()] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key := range c.store {
		if !live[key] {
			delete(c.store, key)
			dropped++
		}
	}
	return dropped
}

// Clear removes all entries from cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]compiled)
}

// Size returns the number of cached entries
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.store)
}
