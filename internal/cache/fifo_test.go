package cache

import (
	"context"
	"fmt"
	"testing"
)

// TestFIFOCacheBasics tests get/set/delete round trips
func TestFIFOCacheBasics(t *testing.T) {
	c := NewFIFOCache(10)
	defer c.Close()
	ctx := context.Background()

	t.Run("MissBeforeSet", func(t *testing.T) {
		_, err := c.Get(ctx, "k")
		if !IsCacheMiss(err) {
			t.Errorf("Expected cache miss, got %v", err)
		}
	})

	t.Run("SetAndGet", func(t *testing.T) {
		if err := c.Set(ctx, "k", "v"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		val, err := c.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if val != "v" {
			t.Errorf("Value mismatch: got %q", val)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set(ctx, "d1", "x")
		c.Set(ctx, "d2", "y")
		if err := c.Delete(ctx, "d1", "d2", "absent"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := c.Get(ctx, "d1"); !IsCacheMiss(err) {
			t.Errorf("d1 should be gone, got %v", err)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		c.Set(ctx, "a", "1")
		if err := c.Clear(ctx); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		n, _ := c.Len(ctx)
		if n != 0 {
			t.Errorf("Expected empty cache, got %d entries", n)
		}
	})
}

// TestFIFOEviction tests the insertion-order eviction policy
func TestFIFOEviction(t *testing.T) {
	ctx := context.Background()

	t.Run("OldestEvictedFirst", func(t *testing.T) {
		c := NewFIFOCache(3)
		defer c.Close()

		for i := 0; i < 3; i++ {
			c.Set(ctx, fmt.Sprintf("k%d", i), "v")
		}
		c.Set(ctx, "k3", "v") // 淘汰 k0

		if _, err := c.Get(ctx, "k0"); !IsCacheMiss(err) {
			t.Errorf("k0 should have been evicted, got %v", err)
		}
		for _, key := range []string{"k1", "k2", "k3"} {
			if _, err := c.Get(ctx, key); err != nil {
				t.Errorf("%s should survive, got %v", key, err)
			}
		}
		if n, _ := c.Len(ctx); n != 3 {
			t.Errorf("Len should stay at capacity, got %d", n)
		}
	})

	t.Run("UpdateKeepsInsertionPosition", func(t *testing.T) {
		// FIFO 不是 LRU:更新已有键不会让它逃过淘汰
		c := NewFIFOCache(2)
		defer c.Close()

		c.Set(ctx, "first", "v1")
		c.Set(ctx, "second", "v1")
		c.Set(ctx, "first", "v2") // 更新,位置不变
		c.Set(ctx, "third", "v1") // 仍然淘汰 first

		if _, err := c.Get(ctx, "first"); !IsCacheMiss(err) {
			t.Errorf("first should be evicted despite the recent update, got %v", err)
		}
		if val, err := c.Get(ctx, "second"); err != nil || val != "v1" {
			t.Errorf("second should survive: %q %v", val, err)
		}
	})

	t.Run("DefaultCapacity", func(t *testing.T) {
		c := NewFIFOCache(0)
		defer c.Close()

		for i := 0; i < DefaultMaxSize+10; i++ {
			c.Set(ctx, fmt.Sprintf("k%d", i), "v")
		}
		if n, _ := c.Len(ctx); n != DefaultMaxSize {
			t.Errorf("Expected default capacity %d, got %d", DefaultMaxSize, n)
		}
	})
}
