package cart

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ViewCache caches assembled cart views keyed by session token. Every cart
// mutation must evict the session's entry before the caller sees the result.
type ViewCache interface {
	Get(ctx context.Context, sessionID string) (View, bool)
	Set(ctx context.Context, sessionID string, v View)
	Evict(ctx context.Context, sessionID string)
}

type RedisViewCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisViewCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisViewCache {
	return &RedisViewCache{rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(sessionID string) string {
	return "cart:view:" + sessionID
}

func (c *RedisViewCache) Get(ctx context.Context, sessionID string) (View, bool) {
	data, err := c.rdb.Get(ctx, cacheKey(sessionID)).Bytes()
	if err != nil {
		return View{}, false
	}
	var v View
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn("cart cache entry corrupt, dropping", zap.String("session", sessionID), zap.Error(err))
		c.Evict(ctx, sessionID)
		return View{}, false
	}
	return v, true
}

func (c *RedisViewCache) Set(ctx context.Context, sessionID string, v View) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(sessionID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cart cache set failed", zap.String("session", sessionID), zap.Error(err))
	}
}

func (c *RedisViewCache) Evict(ctx context.Context, sessionID string) {
	if err := c.rdb.Del(ctx, cacheKey(sessionID)).Err(); err != nil {
		c.logger.Warn("cart cache evict failed", zap.String("session", sessionID), zap.Error(err))
	}
}
