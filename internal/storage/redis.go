package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "billed:session:"

// Redis stores the items of one session in a Redis hash whose expiry is
// refreshed on every write.
type Redis struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func (r *Redis) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.HGet(ctx, r.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis HGET %s %s: %w", r.key, key, err)
	}
	return v, true, nil
}

func (r *Redis) SetItem(ctx context.Context, key, value string) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key, key, value)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis HSET %s %s: %w", r.key, key, err)
	}
	return nil
}

func (r *Redis) RemoveItem(ctx context.Context, key string) error {
	if err := r.rdb.HDel(ctx, r.key, key).Err(); err != nil {
		return fmt.Errorf("redis HDEL %s %s: %w", r.key, key, err)
	}
	return nil
}

type RedisProvider struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisProvider(rdb *redis.Client, ttl time.Duration) *RedisProvider {
	return &RedisProvider{rdb: rdb, ttl: ttl}
}

func (p *RedisProvider) Session(id string) Storage {
	return &Redis{rdb: p.rdb, key: redisKeyPrefix + id, ttl: p.ttl}
}
