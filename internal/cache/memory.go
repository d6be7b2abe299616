package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps recently fetched documents in process memory.
// Documents larger than maxEntryBytes are not held; a full title can run to
// hundreds of megabytes and belongs on disk only.
type MemoryCache struct {
	cache         *gocache.Cache
	maxEntryBytes int
}

// NewMemoryCache creates a new memory cache. A maxEntryBytes of 0 disables the size limit.
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration, maxEntryBytes int) *MemoryCache {
	return &MemoryCache{
		cache:         gocache.New(defaultTTL, cleanupInterval),
		maxEntryBytes: maxEntryBytes,
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if val, found := c.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores value unless it exceeds the entry size limit. A ttl of 0 uses the default.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if c.maxEntryBytes > 0 && len(value) > c.maxEntryBytes {
		return nil
	}
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}

// Len returns the number of cached documents, including expired ones not yet evicted
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
