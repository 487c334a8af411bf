package cache

import (
	"context"
	"sync"
	"time"

	"github.com/macroplate/backend/internal/domain"
)

// entry holds a cached value with its expiration time
type entry struct {
	value      interface{}
	expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache with TTL support, used to
// hold external provider responses between searches.
type MemoryCache struct {
	data  map[string]entry
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache and starts a background
// sweep of expired entries.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		data: make(map[string]entry),
	}

	go c.cleanupExpired()

	return c
}

// Get retrieves a value; expired or missing keys return domain.ErrCacheMiss
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists || time.Now().After(item.expiration) {
		return nil, domain.ErrCacheMiss
	}

	return item.value, nil
}

// Set stores a value with the given TTL
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = entry{
		value:      value,
		expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Exists checks whether a key is present and not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists || time.Now().After(item.expiration) {
		return false, nil
	}

	return true, nil
}

// Size returns the current number of items in the cache
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]entry)
}

// cleanupExpired sweeps expired entries every 10 minutes
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}
