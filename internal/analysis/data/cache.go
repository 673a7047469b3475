package data

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lk2023060901/trendpulse-backend/internal/analysis/biz"
	"github.com/lk2023060901/trendpulse-backend/internal/pkg/redis"
)

const (
	// ResultCacheKeyPrefix namespaces cached analyses in Redis
	ResultCacheKeyPrefix = "trend_result:"

	// DefaultResultTTL bounds how stale a served analysis can be
	DefaultResultTTL = time.Hour
)

// RedisResultCache implements biz.ResultCache on Redis
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisResultCache creates a Redis-backed result cache. A non-positive ttl
// falls back to DefaultResultTTL.
func NewRedisResultCache(client *redis.Client, ttl time.Duration) biz.ResultCache {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &RedisResultCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisResultCache) Get(ctx context.Context, keyword string) (*biz.TrendResult, error) {
	data, err := c.client.Get(ctx, resultCacheKey(keyword))
	if err != nil {
		if redis.IsNil(err) {
			return nil, biz.ErrCacheMiss
		}
		return nil, err
	}

	var result biz.TrendResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *RedisResultCache) Set(ctx context.Context, keyword string, result *biz.TrendResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, resultCacheKey(keyword), string(data), c.ttl)
}

func resultCacheKey(keyword string) string {
	return ResultCacheKeyPrefix + keyword
}

// NoopResultCache satisfies biz.ResultCache when caching is disabled. Every
// lookup misses and writes are discarded.
type NoopResultCache struct{}

// NewNoopResultCache creates a cache that never stores anything
func NewNoopResultCache() biz.ResultCache {
	return &NoopResultCache{}
}

func (NoopResultCache) Get(context.Context, string) (*biz.TrendResult, error) {
	return nil, biz.ErrCacheMiss
}

func (NoopResultCache) Set(context.Context, string, *biz.TrendResult) error {
	return nil
}
