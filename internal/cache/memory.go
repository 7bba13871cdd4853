// Package cache provides CacheStore implementations for the query layer.
package cache

import (
	"context"
	"sync"
	"time"

	"indx-go/internal/indx"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process CacheStore with per-entry TTL. Expired entries
// are dropped lazily on read and swept whenever the map grows past its
// high-water mark.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   indx.Clock

	// sweep when the entry count reaches this; doubled after each sweep
	sweepAt int
}

// NewMemoryCache creates an empty in-process cache. A nil clock defaults to
// the real clock.
func NewMemoryCache(clock indx.Clock) *MemoryCache {
	if clock == nil {
		clock = indx.RealClock{}
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		clock:   clock,
		sweepAt: 64,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.clock.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{value: value, expiresAt: c.clock.Now().Add(ttl)}
	if len(c.entries) >= c.sweepAt {
		c.sweep()
	}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// sweep removes expired entries. Caller holds the lock.
func (c *MemoryCache) sweep() {
	now := c.clock.Now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) >= c.sweepAt {
		c.sweepAt *= 2
	}
}

var _ indx.CacheStore = (*MemoryCache)(nil)
