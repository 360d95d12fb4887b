package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheItem 包装缓存数据和过期时间
type cacheItem[V any] struct {
	data      V
	expiresAt time.Time // zero means never
}

// Cache is a size-bounded LRU with optional per-entry expiry.
// It is safe for concurrent use.
type Cache[K comparable, V any] struct {
	lruCache *lru.Cache[K, cacheItem[V]]
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates a cache holding up to size entries. A ttl of zero keeps
// entries until they are evicted.
func NewCache[K comparable, V any](size int, ttl time.Duration) (*Cache[K, V], error) {
	l, err := lru.New[K, cacheItem[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lruCache: l, ttl: ttl, now: time.Now}, nil
}

// Set 设置缓存
func (c *Cache[K, V]) Set(key K, data V) {
	item := cacheItem[V]{data: data}
	if c.ttl > 0 {
		item.expiresAt = c.now().Add(c.ttl)
	}
	c.lruCache.Add(key, item)
}

// Get 获取缓存，若不存在或已过期则返回 false
func (c *Cache[K, V]) Get(key K) (V, bool) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		var zero V
		return zero, false
	}

	if !val.expiresAt.IsZero() && c.now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		var zero V
		return zero, false
	}

	return val.data, true
}

// Delete 删除指定缓存
func (c *Cache[K, V]) Delete(key K) {
	c.lruCache.Remove(key)
}

func (c *Cache[K, V]) Len() int {
	return c.lruCache.Len()
}
