// Package ratelimit implements fixed-window rate limiting on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter is the subset of the Redis client the limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisLimiter counts requests per key with INCR. Every hit sends EXPIRE NX,
// which starts the window on a key without a TTL and leaves a running one
// alone, so a failed EXPIRE is repaired by the next request. Needs Redis 7.
type RedisLimiter struct {
	counter Counter
}

// NewRedisLimiter creates a limiter backed by counter.
func NewRedisLimiter(counter Counter) *RedisLimiter {
	return &RedisLimiter{counter: counter}
}

// Allow records a hit on key and reports whether it is within limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := l.counter.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count request: %w", err)
	}
	if err := l.counter.ExpireNX(ctx, key, window).Err(); err != nil {
		return false, fmt.Errorf("failed to start rate window: %w", err)
	}
	return count <= int64(limit), nil
}

// Connect opens a Redis client and checks it answers PING.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}
