// Package cache provides a small in-memory TTL cache for generated content.
package cache

import (
	"sync"
	"time"
)

// Cacher is the read/write cache interface.
type Cacher interface {
	Get(key string) (string, bool)
	Set(key, val string)
}

type entry struct {
	val     string
	expires time.Time
}

// TTLCache is a concurrency-safe string cache with per-cache expiry.
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache whose entries expire after ttl. A non-positive ttl
// keeps entries forever.
func New(ttl time.Duration) *TTLCache {
	return &TTLCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value if present and not expired.
func (c *TTLCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		delete(c.entries, key)
		return "", false
	}
	return e.val, true
}

// Set stores the value under the key, replacing any previous entry.
func (c *TTLCache) Set(key, val string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{val: val}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.entries[key] = e
}

// Len returns the number of entries, counting expired ones not yet evicted.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge removes all expired entries.
func (c *TTLCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if !e.expires.IsZero() && now.After(e.expires) {
			delete(c.entries, k)
		}
	}
}
