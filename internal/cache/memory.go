package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// memoryCache implements Cache with a mutex-guarded map. Used in tests
// and as a fallback when Redis is not configured.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]map[string]memoryEntry
}

// NewMemoryCache creates an in-memory cache
func NewMemoryCache() *memoryCache {
	return &memoryCache{
		entries: make(map[string]map[string]memoryEntry),
	}
}

// Get loads the entry for (namespace, key) into dest
func (c *memoryCache) Get(ctx context.Context, namespace, key string, dest any) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[namespace][key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expires) {
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return true, nil
}

// Set stores value under (namespace, key) with the given TTL
func (c *memoryCache) Set(ctx context.Context, namespace, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries[namespace] == nil {
		c.entries[namespace] = make(map[string]memoryEntry)
	}
	c.entries[namespace][key] = memoryEntry{
		data:    data,
		expires: time.Now().Add(ttl),
	}
	return nil
}

// InvalidateNamespace drops every entry in the namespace
func (c *memoryCache) InvalidateNamespace(ctx context.Context, namespace string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, namespace)
	return nil
}
