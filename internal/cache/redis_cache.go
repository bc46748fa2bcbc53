package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"restopos/backend/internal/domain"
)

type RedisMenuCache struct {
	client redis.UniversalClient
}

func NewRedisMenuCache(client redis.UniversalClient) *RedisMenuCache {
	return &RedisMenuCache{client: client}
}

func (c *RedisMenuCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisMenuCache) Get(ctx context.Context, key string) ([]domain.MenuItem, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []domain.MenuItem
	if err := json.Unmarshal(val, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (c *RedisMenuCache) Set(ctx context.Context, key string, items []domain.MenuItem, ttl time.Duration) error {
	if items == nil {
		return nil
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisMenuCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
