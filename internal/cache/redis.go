package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache implements Cache on top of Redis. Keys are laid out as
// cache:<namespace>:<key> so a namespace can be dropped with one scan.
type redisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed cache
func NewRedisCache(client *redis.Client) *redisCache {
	return &redisCache{client: client}
}

// entryKey builds the Redis key for a cache entry
func (c *redisCache) entryKey(namespace, key string) string {
	return fmt.Sprintf("cache:%s:%s", namespace, key)
}

// Get loads the entry for (namespace, key) into dest
func (c *redisCache) Get(ctx context.Context, namespace, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.entryKey(namespace, key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cache entry: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return true, nil
}

// Set stores value under (namespace, key) with the given TTL
func (c *redisCache) Set(ctx context.Context, namespace, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := c.client.Set(ctx, c.entryKey(namespace, key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// InvalidateNamespace drops every entry in the namespace
func (c *redisCache) InvalidateNamespace(ctx context.Context, namespace string) error {
	pattern := fmt.Sprintf("cache:%s:*", namespace)

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache entry: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache namespace: %w", err)
	}
	return nil
}
