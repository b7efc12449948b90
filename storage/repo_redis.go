package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for storefront session state
	redisKeyPrefix = "storefront:"
)

// RedisRepo is a Redis-backed implementation of Storage, used when several
// storefront instances share browser sessions.
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Storage = (*RedisRepo)(nil)

// RedisRepoOption configures a RedisRepo instance.
type RedisRepoOption func(*RedisRepo)

// WithTTL sets the expiry applied on every Set. Zero keeps keys forever.
func WithTTL(ttl time.Duration) RedisRepoOption {
	return func(r *RedisRepo) {
		r.ttl = ttl
	}
}

// NewRedisRepo constructs a Redis-backed repository. The client lifecycle is managed by the caller.
func NewRedisRepo(client *redis.Client, opts ...RedisRepoOption) *RedisRepo {
	r := &RedisRepo{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *RedisRepo) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *RedisRepo) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, redisKeyPrefix+key, value, r.ttl).Err()
}

func (r *RedisRepo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, redisKeyPrefix+key)
	}
	return r.client.Del(ctx, prefixed...).Err()
}
