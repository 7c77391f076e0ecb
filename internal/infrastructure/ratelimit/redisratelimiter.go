package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter tracks request timestamps in one sorted set per
// (key, window) pair and counts the live ones on each call. All
// windows are checked in a single pipeline round trip; the request is
// recorded in the same trip, so a denied request still counts against
// the caller.
type RedisRateLimiter struct {
	client *redis.Client
}

func NewRedisRateLimiter(client *redis.Client) RateLimiter {
	return &RedisRateLimiter{client: client}
}

type windowCheck struct {
	duration time.Duration
	limit    int
	count    *redis.IntCmd
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string, config RateLimitConfig) (bool, error) {
	now := time.Now().UnixNano()

	checks := make([]windowCheck, 0, 3)
	for _, w := range []windowCheck{
		{duration: time.Minute, limit: config.RequestsPerMinute},
		{duration: time.Hour, limit: config.RequestsPerHour},
		{duration: 24 * time.Hour, limit: config.RequestsPerDay},
	} {
		if w.limit > 0 {
			checks = append(checks, w)
		}
	}
	if len(checks) == 0 {
		return true, nil
	}

	pipe := l.client.Pipeline()
	for i := range checks {
		w := &checks[i]
		setKey := l.setKey(key, w.duration)
		cutoff := now - w.duration.Nanoseconds()

		pipe.ZRemRangeByScore(ctx, setKey, "0", strconv.FormatInt(cutoff, 10))
		w.count = pipe.ZCard(ctx, setKey)
		pipe.ZAdd(ctx, setKey, redis.Z{Score: float64(now), Member: now})
		pipe.Expire(ctx, setKey, w.duration+time.Minute)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	for _, w := range checks {
		if w.count.Val() >= int64(w.limit) {
			return false, nil
		}
	}
	return true, nil
}

func (l *RedisRateLimiter) setKey(key string, window time.Duration) string {
	return fmt.Sprintf("ratelimit:%s:%s", key, window)
}
