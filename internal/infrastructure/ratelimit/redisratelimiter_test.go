package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLimiter(t *testing.T) RateLimiter {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return NewRedisRateLimiter(client)
}

func TestRedisRateLimiter_AllowsUnderLimit(t *testing.T) {
	limiter := setupTestLimiter(t)
	cfg := RateLimitConfig{RequestsPerMinute: 3}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "client-a", cfg)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}
}

func TestRedisRateLimiter_DeniesOverLimit(t *testing.T) {
	limiter := setupTestLimiter(t)
	cfg := RateLimitConfig{RequestsPerMinute: 2}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "client-a", cfg)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "client-a", cfg)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRedisRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter := setupTestLimiter(t)
	cfg := RateLimitConfig{RequestsPerMinute: 1}
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "client-a", cfg)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "client-a", cfg)
	require.NoError(t, err)
	require.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "client-b", cfg)
	require.NoError(t, err)
	assert.True(t, allowed, "another client keeps its own budget")
}

func TestRedisRateLimiter_TightestWindowWins(t *testing.T) {
	limiter := setupTestLimiter(t)
	cfg := RateLimitConfig{RequestsPerMinute: 1, RequestsPerHour: 100}
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "client-a", cfg)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "client-a", cfg)
	require.NoError(t, err)
	assert.False(t, allowed, "the minute window denies even with hour budget left")
}

func TestRedisRateLimiter_NoWindowsConfigured(t *testing.T) {
	limiter := setupTestLimiter(t)

	allowed, err := limiter.Allow(context.Background(), "client-a", RateLimitConfig{})
	require.NoError(t, err)
	assert.True(t, allowed)
}
