package chain

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache holds resolved names with a TTL. ENS records change rarely, so a
// long TTL spares the node one round trip per repeated lookup.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

func NewCache(ttl time.Duration, clock clockwork.Clock) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the cached value if present and fresh. Expired entries read
// as misses; eviction happens separately under the write lock.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.clock.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{value: value, expiresAt: c.clock.Now().Add(c.ttl)}
}

func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// EvictExpired drops stale entries and reports how many went away.
// The cleanup worker calls this on its sweep interval.
func (c *Cache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}
