package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// PageTTL is the fixed lifetime of a cached first page.
const PageTTL = 60 * time.Second

// Cache memoizes first-page list results. It is best-effort: callers log
// and swallow every error, the primary data path never depends on it.
type Cache interface {
	GetPage(ctx context.Context, key string) ([]byte, error)
	SetPage(ctx context.Context, key string, payload []byte) error
	InvalidateScope(ctx context.Context, scope string) error
}

// BoardScope is the key prefix for a tenant's cached board pages.
func BoardScope(tenantID uuid.UUID) string {
	return fmt.Sprintf("page:%s:boards:", tenantID)
}

// TodoScope is the key prefix for a board's cached todo pages.
func TodoScope(tenantID, boardID uuid.UUID) string {
	return fmt.Sprintf("page:%s:board:%s:todos:", tenantID, boardID)
}

// PageKey appends the page size to a scope prefix. The size is part of the
// key because pages of different sizes hold different envelopes.
func PageKey(scope string, limit int) string {
	return fmt.Sprintf("%s%d", scope, limit)
}

type RedisCache struct {
	client *redis.Client
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// GetPage returns the cached payload, or nil on a miss.
func (c *RedisCache) GetPage(ctx context.Context, key string) ([]byte, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *RedisCache) SetPage(ctx context.Context, key string, payload []byte) error {
	return c.client.Set(ctx, key, payload, PageTTL).Err()
}

// InvalidateScope deletes every cached page under the scope prefix, one key
// per page size that has been requested.
func (c *RedisCache) InvalidateScope(ctx context.Context, scope string) error {
	keys, err := c.client.Keys(ctx, scope+"*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
