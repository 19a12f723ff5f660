package storage

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"taskdeck/domain"
)

// Cache wraps a TaskSource with Redis-backed caching of per-user
// collections. Reads fall back to the source on any cache miss or Redis
// error; saves write through and evict so the next load observes the new
// collection.
type Cache struct {
	base  TaskSource
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching TaskSource wrapper using the provided Redis
// client and TTL.
func NewCache(base TaskSource, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base source is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) Load(ctx context.Context, userID string) []domain.Task {
	if tasks, ok := c.loadFromCache(ctx, userID); ok {
		return tasks
	}
	tasks := c.base.Load(ctx, userID)
	c.store(ctx, userID, tasks)
	return tasks
}

func (c *Cache) Save(ctx context.Context, userID string, tasks []domain.Task) error {
	if err := c.base.Save(ctx, userID, tasks); err != nil {
		return err
	}
	c.evict(ctx, userID)
	return nil
}

func (c *Cache) loadFromCache(ctx context.Context, userID string) ([]domain.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing source without failing.
			_ = c.redis.Del(ctx, cacheKey(userID)).Err()
		}
		return nil, false
	}
	var tasks []domain.Task
	if err := sonic.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, cacheKey(userID)).Err()
		return nil, false
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, true
}

func (c *Cache) store(ctx context.Context, userID string, tasks []domain.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(tasks)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, cacheKey(userID), data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, userID string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, cacheKey(userID)).Err()
}

// cacheKey is kept distinct from the repository's own per-user key so a
// Redis-backed KV and the cache can share one instance.
func cacheKey(userID string) string {
	return "taskcache:" + userID
}
