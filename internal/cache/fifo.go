package cache

import (
	"context"
	"sync"
)

// =============================================================================
// 💾 进程内 FIFO 缓存
// =============================================================================

// FIFOCache 是容量受限的进程内缓存。
// 淘汰策略为插入序 FIFO：超出容量时淘汰最早插入的键，与访问频率
// 无关。这是刻意选择的简单策略，不是 LRU。
type FIFOCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]string
	order   []string
	closed  bool
}

// DefaultMaxSize 默认缓存容量
const DefaultMaxSize = 100

// NewFIFOCache 创建 FIFO 缓存，maxSize 非正数时使用默认容量。
func NewFIFOCache(maxSize int) *FIFOCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &FIFOCache{
		maxSize: maxSize,
		entries: make(map[string]string, maxSize),
	}
}

// Get 获取缓存值
func (c *FIFOCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	val, ok := c.entries[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return val, nil
}

// Set 写入缓存值。已存在的键只更新内容，不改变其插入位置；
// 新键超出容量时淘汰最早插入的键。
func (c *FIFOCache) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = value
		return nil
	}

	if len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = value
	c.order = append(c.order, key)
	return nil
}

// Delete 删除指定键
func (c *FIFOCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		if _, ok := c.entries[key]; !ok {
			continue
		}
		delete(c.entries, key)
		for i, k := range c.order {
			if k == key {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Clear 清空缓存
func (c *FIFOCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]string, c.maxSize)
	c.order = nil
	return nil
}

// Len 返回条目数
func (c *FIFOCache) Len(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), nil
}

// Close 关闭缓存
func (c *FIFOCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.entries = nil
	c.order = nil
	return nil
}

// 确保 FIFOCache 实现 Cache 接口
var _ Cache = (*FIFOCache)(nil)
