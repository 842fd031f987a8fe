package repositories

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevocationRepository records tokens ended by logout until they expire
type TokenRevocationRepository interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisTokenRevocationRepository stores revoked token IDs as expiring keys
type RedisTokenRevocationRepository struct {
	client *redis.Client
}

// NewRedisTokenRevocationRepository creates a new RedisTokenRevocationRepository
func NewRedisTokenRevocationRepository(client *redis.Client) *RedisTokenRevocationRepository {
	return &RedisTokenRevocationRepository{client: client}
}

func revokedKey(tokenID string) string {
	return "revoked_token:" + tokenID
}

// Revoke marks tokenID revoked until expiresAt. Already expired tokens are ignored.
func (r *RedisTokenRevocationRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err()
}

func (r *RedisTokenRevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
