package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache is the Redis-backed implementation for deployments that
// already run Redis. Expiry is handled server-side; key derivation is
// shared with the memory backend.
type redisCache struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed cache service
func NewRedis(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Get(ctx context.Context, namespace string, params map[string]any, dest any) error {
	if c.client == nil {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, BuildKey(namespace, params)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, namespace string, params map[string]any, value any, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, BuildKey(namespace, params), data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, namespace string, params map[string]any) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, BuildKey(namespace, params)).Err()
}

func (c *redisCache) InvalidateNamespace(ctx context.Context, namespace string) error {
	if c.client == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, namespace+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
