package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// keyPrefix 种子缓存键前缀，完整键形如 bookcatalog:seed:python:58
const keyPrefix = "bookcatalog:seed:"

// SeedCache 种子搜索结果缓存
// 设计说明：
// 1. 缓存OpenLibrary返回的原始JSON，重启时命中缓存可以跳过外部调用
// 2. 目录本身不落盘，缓存只影响种子来源，不影响运行时数据
// 3. 缓存内容过期后自动失效（TTL）
type SeedCache struct {
	client redis.Cmdable
}

// NewSeedCache 创建种子缓存
func NewSeedCache(client redis.Cmdable) *SeedCache {
	return &SeedCache{client: client}
}

// Get 读取缓存，未命中返回(nil, false, nil)
func (c *SeedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.ErrRedisError.WithCause(err)
	}
	return data, true, nil
}

// Set 写入缓存
func (c *SeedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return apperrors.ErrRedisError.WithCause(err)
	}
	return nil
}

// Invalidate 删除缓存
func (c *SeedCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return apperrors.ErrRedisError.WithCause(err)
	}
	return nil
}
