package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// RedisStore implements Store on Redis so counters are shared across
// server instances. INCR is atomic, so concurrent attempts from the same
// identity never lose updates; the window is the key's TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a counter store backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (rs *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	rkey := redisKeyPrefix + key

	pipe := rs.client.TxPipeline()
	incr := pipe.Incr(ctx, rkey)
	// NX: only set the expiry when the key has none, i.e. on the first
	// attempt of a fresh window. Later attempts must not slide the window.
	pipe.ExpireNX(ctx, rkey, window)
	pttl := pipe.PTTL(ctx, rkey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimiter: redis increment failed: %w", err)
	}

	count := int(incr.Val())
	ttl := pttl.Val()
	if ttl < 0 {
		ttl = window
	}

	return count, time.Now().Add(ttl), nil
}

func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("ratelimiter: redis reset failed: %w", err)
	}
	return nil
}
