package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NordCoder/Authly/internal/domain/auth"
)

const (
	refreshKeyPrefix   = "auth:refresh:"
	blacklistKeyPrefix = "auth:blacklist:"
)

// TokenCache keeps refresh-token mappings and the access-token blacklist in
// a TTL store. All operations are single-key; there are no cross-key
// transactions to hold.
type TokenCache struct {
	client *redis.Client
}

var _ auth.TokenCache = (*TokenCache)(nil)

func NewTokenCache(client *redis.Client) *TokenCache {
	return &TokenCache{client: client}
}

func (c *TokenCache) StoreRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := c.client.Set(ctx, refreshKeyPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis set refresh token: %w", err)
	}
	return nil
}

func (c *TokenCache) GetRefreshToken(ctx context.Context, token string) (string, bool, error) {
	userID, err := c.client.Get(ctx, refreshKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get refresh token: %w", err)
	}
	return userID, true, nil
}

func (c *TokenCache) BlacklistAccessToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := c.client.Set(ctx, blacklistKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis blacklist token: %w", err)
	}
	return nil
}

// IsAccessTokenBlacklisted propagates cache failures so the request gate
// can fail closed instead of letting a possibly revoked token through.
func (c *TokenCache) IsAccessTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.client.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("redis blacklist check: %w", err)
	}
	return n > 0, nil
}
