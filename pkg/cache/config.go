package cache

import "time"

// RedisConfig is the connection and keying setup of RedisCache. Every key
// written through the cache is stored under Prefix.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	PoolTimeout  time.Duration
	MinIdleConns int
	Prefix       string
}

type RedisOption func(*RedisConfig)

func WithRedisAddr(addr string) RedisOption { return func(c *RedisConfig) { c.Addr = addr } }

func WithRedisPassword(pw string) RedisOption { return func(c *RedisConfig) { c.Password = pw } }

func WithRedisDB(db int) RedisOption { return func(c *RedisConfig) { c.DB = db } }

func WithRedisPrefix(prefix string) RedisOption { return func(c *RedisConfig) { c.Prefix = prefix } }

// WithRedisPool sizes the connection pool. Zero values keep the defaults.
func WithRedisPool(size, minIdle int, timeout time.Duration) RedisOption {
	return func(c *RedisConfig) {
		if size > 0 {
			c.PoolSize = size
		}
		if minIdle > 0 {
			c.MinIdleConns = minIdle
		}
		if timeout > 0 {
			c.PoolTimeout = timeout
		}
	}
}

// MemoryConfig bounds the in-process LRU. MaxSize counts entries.
type MemoryConfig struct {
	MaxSize int
}

type MemoryOption func(*MemoryConfig)

func WithMemoryMaxSize(size int) MemoryOption { return func(c *MemoryConfig) { c.MaxSize = size } }

// LayeredConfig sizes L1 of a LayeredCache. MemoryTTL caps how long L1 keeps
// an entry, so a delete on another replica is seen within that window.
type LayeredConfig struct {
	MemoryMaxSize int
	MemoryTTL     time.Duration
}

type LayeredOption func(*LayeredConfig)

func WithLayeredMemorySize(size int) LayeredOption {
	return func(c *LayeredConfig) { c.MemoryMaxSize = size }
}

func WithLayeredMemoryTTL(ttl time.Duration) LayeredOption {
	return func(c *LayeredConfig) { c.MemoryTTL = ttl }
}
