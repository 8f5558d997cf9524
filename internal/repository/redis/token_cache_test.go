package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*TokenCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenCache(client), mr
}

func TestTokenCache_RefreshTokenRoundtrip(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.StoreRefreshToken(ctx, "user-1", "tok-abc", 7*24*time.Hour))

	userID, ok, err := cache.GetRefreshToken(ctx, "tok-abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)

	assert.Equal(t, 7*24*time.Hour, mr.TTL("auth:refresh:tok-abc"))
}

func TestTokenCache_RefreshTokenAbsent(t *testing.T) {
	cache, _ := setupTestCache(t)

	userID, ok, err := cache.GetRefreshToken(context.Background(), "never-issued")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, userID)
}

func TestTokenCache_RefreshTokenExpires(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.StoreRefreshToken(ctx, "user-1", "tok-abc", time.Minute))

	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.GetRefreshToken(ctx, "tok-abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenCache_StoreOverwritesExistingMapping(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.StoreRefreshToken(ctx, "user-1", "tok-abc", time.Hour))
	require.NoError(t, cache.StoreRefreshToken(ctx, "user-2", "tok-abc", time.Hour))

	userID, ok, err := cache.GetRefreshToken(ctx, "tok-abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "user-2", userID)
}

func TestTokenCache_Blacklist(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	blacklisted, err := cache.IsAccessTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, blacklisted, "absence means not blacklisted")

	require.NoError(t, cache.BlacklistAccessToken(ctx, "jti-1", 10*time.Minute))

	blacklisted, err = cache.IsAccessTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, blacklisted)
	assert.Equal(t, 10*time.Minute, mr.TTL("auth:blacklist:jti-1"))

	mr.FastForward(11 * time.Minute)

	blacklisted, err = cache.IsAccessTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, blacklisted, "entry expires with the token's remaining life")
}

func TestTokenCache_ErrorsPropagate(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	mr.Close()

	_, _, err := cache.GetRefreshToken(ctx, "tok-abc")
	assert.Error(t, err)

	_, err = cache.IsAccessTokenBlacklisted(ctx, "jti-1")
	assert.Error(t, err, "gate relies on this error to fail closed")
}
