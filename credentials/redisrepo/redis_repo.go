package redisrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-case-portal/credentials"
	apperrors "github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/redis/go-redis/v9"
)

var _ credentials.Repo = (*RedisRepo)(nil)

// RedisRepo keeps credentials in redis under "<prefix>:<key>", which lets
// several front-ends on different hosts share one signed-in session.
type RedisRepo struct {
	client redis.UniversalClient
	prefix string
}

func New(client redis.UniversalClient, prefix string) *RedisRepo {
	return &RedisRepo{client: client, prefix: prefix}
}

func (r *RedisRepo) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *RedisRepo) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (r *RedisRepo) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisRepo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(k))
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
