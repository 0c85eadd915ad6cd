package cache

import (
	"context"
	"encoding/json"
	"path"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultMemoryTTL applies when Set is called without an expiration.
const defaultMemoryTTL = 7 * 24 * time.Hour

type memoryItem struct {
	data     []byte
	expireAt time.Time
}

func (m memoryItem) expired(now time.Time) bool {
	return now.After(m.expireAt)
}

// MemoryCache implements Service in process with LRU eviction. Expired
// entries are dropped lazily on access.
type MemoryCache struct {
	items *lru.Cache[string, memoryItem]
	now   func() time.Time
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{MaxSize: 1000}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1000
	}

	items, _ := lru.New[string, memoryItem](cfg.MaxSize)
	return &MemoryCache{items: items, now: time.Now}
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if expiration <= 0 {
		expiration = defaultMemoryTTL
	}
	mc.items.Add(key, memoryItem{data: data, expireAt: mc.now().Add(expiration)})
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	item, ok := mc.items.Get(key)
	if !ok {
		return ErrCacheMiss
	}
	if item.expired(mc.now()) {
		mc.items.Remove(key)
		return ErrCacheMiss
	}
	return json.Unmarshal(item.data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		mc.items.Remove(key)
	}
	return nil
}

// DeleteByPattern removes keys matching a glob pattern such as "chart:*".
func (mc *MemoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	for _, key := range mc.items.Keys() {
		if ok, err := path.Match(pattern, key); err != nil {
			return err
		} else if ok {
			mc.items.Remove(key)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (mc *MemoryCache) Len() int { return mc.items.Len() }

// Close drops every entry.
func (mc *MemoryCache) Close() error {
	mc.items.Purge()
	return nil
}
