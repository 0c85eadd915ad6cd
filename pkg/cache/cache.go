package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache: key not found")

// Service is a JSON value cache. Every backend encodes on Set and decodes on
// Get, so a value read back from memory looks exactly like one from Redis.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	// DeleteByPattern removes every key matching a glob such as "reading:*".
	DeleteByPattern(ctx context.Context, pattern string) error
	Close() error
}

// GetOrLoad returns the cached value of key, or calls load and caches its
// result for ttl. The bool reports a hit. A failing cache only costs a load;
// load errors are returned and not cached.
func GetOrLoad[T any](ctx context.Context, c Service, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, bool, error) {
	var v T
	if err := c.Get(ctx, key, &v); err == nil {
		return v, true, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, false, err
	}
	_ = c.Set(ctx, key, v, ttl)
	return v, false, nil
}
