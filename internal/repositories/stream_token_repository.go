package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skillacademy/course-service/internal/apperrors"
)

type streamTokenRepository struct {
	client *redis.Client
}

// NewStreamTokenRepository creates a Redis-backed streaming token repository.
// Tokens expire naturally through the key TTL.
func NewStreamTokenRepository(client *redis.Client) *streamTokenRepository {
	return &streamTokenRepository{
		client: client,
	}
}

// tokenKey builds the Redis key for a streaming token.
// The file name is part of the key so a token only authorizes the URL
// it was issued for.
func (r *streamTokenRepository) tokenKey(token, name string) string {
	return fmt.Sprintf("mp4_lecture:%s:%s", token, name)
}

// Save stores the resolved file path under the token for the given TTL
func (r *streamTokenRepository) Save(ctx context.Context, token, name, path string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.tokenKey(token, name), path, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store streaming token: %w", err)
	}
	return nil
}

// GetPath returns the file path bound to the token.
// Unknown and expired tokens both yield apperrors.ErrTokenNotFound.
func (r *streamTokenRepository) GetPath(ctx context.Context, token, name string) (string, error) {
	path, err := r.client.Get(ctx, r.tokenKey(token, name)).Result()
	if err == redis.Nil {
		return "", apperrors.ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load streaming token: %w", err)
	}
	return path, nil
}
