package services

import (
	"context"
	"time"

	"deliwaste/server/internal/utils"

	"go.uber.org/zap"
)

// CachePrefix namespaces every cached payload, so one prefix drop clears them all.
const CachePrefix = "deliwaste:"

// ResultCache stores computed dashboards and plans. Failures never fail a
// request: a broken cache behaves like an empty one.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	Invalidate(ctx context.Context)
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string, interface{}) bool { return false }
func (NopCache) Set(context.Context, string, interface{})      {}
func (NopCache) Invalidate(context.Context)                    {}

// RedisResultCache keeps payloads in Redis as JSON with a fixed TTL.
type RedisResultCache struct {
	redis *utils.RedisClient
	ttl   time.Duration
	log   *zap.Logger
}

func NewRedisResultCache(redis *utils.RedisClient, ttl time.Duration, log *zap.Logger) *RedisResultCache {
	return &RedisResultCache{redis: redis, ttl: ttl, log: log}
}

func (c *RedisResultCache) Get(ctx context.Context, key string, dest interface{}) bool {
	found, err := c.redis.GetJSON(ctx, CachePrefix+key, dest)
	if err != nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (c *RedisResultCache) Set(ctx context.Context, key string, value interface{}) {
	if err := c.redis.SetJSON(ctx, CachePrefix+key, value, c.ttl); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisResultCache) Invalidate(ctx context.Context) {
	n, err := c.redis.DeleteByPrefix(ctx, CachePrefix)
	if err != nil {
		c.log.Warn("cache invalidation failed", zap.Error(err))
		return
	}
	c.log.Debug("cache invalidated", zap.Int("keys", n))
}
