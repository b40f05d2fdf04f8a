// Package cache provides internal content cache backends.
// This package is internal and should not be imported by external projects.
package cache

import (
	"context"
	"errors"
)

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = errors.New("cache miss")

// IsCacheMiss 判断是否为缓存未命中错误
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// Cache 是产物内容缓存的统一接口。
// 默认实现为进程内 FIFO 缓存，分布式部署可切换到 Redis 后端。
type Cache interface {
	// Get 获取缓存内容，未命中返回 ErrCacheMiss
	Get(ctx context.Context, key string) (string, error)

	// Set 写入缓存内容
	Set(ctx context.Context, key, value string) error

	// Delete 删除一个或多个键
	Delete(ctx context.Context, keys ...string) error

	// Clear 清空缓存
	Clear(ctx context.Context) error

	// Len 返回当前缓存条目数
	Len(ctx context.Context) (int, error)

	// Close 关闭缓存并释放资源
	Close() error
}
