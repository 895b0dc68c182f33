package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// redisAPI decodes numbers as json.Number so stored integers keep their precision.
var redisAPI = sonic.Config{UseNumber: true}.Froze()

// RedisCache stores values as JSON strings. A positive ttl is refreshed on every Set.
type RedisCache[S any] struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisCache[S any](rdb redis.Cmdable, ttl time.Duration) *RedisCache[S] {
	return &RedisCache[S]{rdb: rdb, ttl: ttl}
}

func (r *RedisCache[S]) Set(ctx context.Context, key string, val S) error {
	b, err := sonic.Marshal(val)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		slog.Error("Failed to write redis key", "key", key, "err", err)
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	var zero S
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		slog.Error("Failed to read redis key", "key", key, "err", err)
		return zero, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var val S
	if err := redisAPI.Unmarshal(b, &val); err != nil {
		return zero, false, fmt.Errorf("unmarshal value of %s: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisCache[S]) Del(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

var _ Cache[int] = (*RedisCache[int])(nil)
