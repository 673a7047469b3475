package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/trendpulse-backend/internal/analysis/biz"
)

func TestResultCacheKey(t *testing.T) {
	assert.Equal(t, "trend_result:golang", resultCacheKey("golang"))
	assert.Equal(t, "trend_result:machine learning", resultCacheKey("machine learning"))
}

func TestNewRedisResultCache_DefaultTTL(t *testing.T) {
	cache, ok := NewRedisResultCache(nil, 0).(*RedisResultCache)
	require.True(t, ok)
	assert.Equal(t, DefaultResultTTL, cache.ttl)

	cache, ok = NewRedisResultCache(nil, 10*time.Minute).(*RedisResultCache)
	require.True(t, ok)
	assert.Equal(t, 10*time.Minute, cache.ttl)
}

func TestNoopResultCache(t *testing.T) {
	cache := NewNoopResultCache()
	ctx := context.Background()

	_, err := cache.Get(ctx, "golang")
	require.Error(t, err)
	assert.True(t, errors.Is(err, biz.ErrCacheMiss))

	err = cache.Set(ctx, "golang", &biz.TrendResult{Trend: biz.TrendStable})
	require.NoError(t, err)

	_, err = cache.Get(ctx, "golang")
	assert.True(t, errors.Is(err, biz.ErrCacheMiss))
}
