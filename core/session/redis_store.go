package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisIDPrefix    = "session:id:"
	redisTokenPrefix = "session:token:"
)

// RedisStore implements Store on Redis, sharing sessions across server
// instances. Expiry is enforced both by the stored ExpiresAt field and by
// Redis key TTLs, so DeleteExpired is effectively a no-op.
type RedisStore[Data any] struct {
	client *redis.Client
}

// NewRedisStore creates a session store backed by the given Redis client.
func NewRedisStore[Data any](client *redis.Client) *RedisStore[Data] {
	return &RedisStore[Data]{client: client}
}

func (rs *RedisStore[Data]) GetByID(ctx context.Context, id uuid.UUID) (*Session[Data], error) {
	return rs.get(ctx, redisIDPrefix+id.String())
}

func (rs *RedisStore[Data]) GetByToken(ctx context.Context, token string) (*Session[Data], error) {
	id, err := rs.client.Get(ctx, redisTokenPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: redis lookup failed: %w", err)
	}
	return rs.get(ctx, redisIDPrefix+id)
}

func (rs *RedisStore[Data]) get(ctx context.Context, key string) (*Session[Data], error) {
	raw, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: redis get failed: %w", err)
	}

	var sess Session[Data]
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("session: corrupt session payload: %w", err)
	}
	return &sess, nil
}

// Save stores the session under its ID with a token index entry. Both keys
// expire with the session, and a rotated token drops the old index entry in
// the same pipeline so two concurrent saves cannot resurrect it.
func (rs *RedisStore[Data]) Save(ctx context.Context, sess *Session[Data]) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: failed to encode session: %w", err)
	}

	var oldToken string
	if old, err := rs.GetByID(ctx, sess.ID); err == nil && old.Token != sess.Token {
		oldToken = old.Token
	}

	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, redisIDPrefix+sess.ID.String(), raw, ttl)
	pipe.Set(ctx, redisTokenPrefix+sess.Token, sess.ID.String(), ttl)
	if oldToken != "" {
		pipe.Del(ctx, redisTokenPrefix+oldToken)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: redis save failed: %w", err)
	}
	return nil
}

func (rs *RedisStore[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	sess, err := rs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	pipe := rs.client.TxPipeline()
	pipe.Del(ctx, redisIDPrefix+id.String())
	pipe.Del(ctx, redisTokenPrefix+sess.Token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: redis delete failed: %w", err)
	}
	return nil
}

// DeleteExpired is satisfied by Redis key TTLs.
func (rs *RedisStore[Data]) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}
