package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared by every instance using the
// same Redis.
type RedisLimiter struct {
	client *redis.Client
	times  int64
	window time.Duration
}

// NewRedisLimiter creates a RedisLimiter allowing times requests per window.
func NewRedisLimiter(client *redis.Client, times int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, times: int64(times), window: window}
}

// Allow implements Limiter. The counter and its TTL are set in one
// transaction; EXPIRE NX re-arms a key left without a TTL and leaves a
// running window alone.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = "ratelimit:" + key

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= l.times, nil
}
