package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotTTL bounds how stale a cached computation may be before the
// dashboard recomputes from fresh records.
const SnapshotTTL = 5 * time.Minute

// SnapshotCache stores serialized computation results keyed per user and
// surface. Implementations must be safe for concurrent use; a miss is not
// an error, it just forces a recomputation.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
	Invalidate(ctx context.Context, keys ...string) error
}

type redisSnapshotCache struct {
	client *redis.Client
}

func NewRedisSnapshotCache(addr string) SnapshotCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &redisSnapshotCache{client: rdb}
}

func (r *redisSnapshotCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (r *redisSnapshotCache) Set(ctx context.Context, key string, value string) error {
	return r.client.Set(ctx, key, value, SnapshotTTL).Err()
}

func (r *redisSnapshotCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
