// Package cache provides a small key/value caching interface, with
// in-memory and Redis-backed implementations, plus an AssignmentCache
// wrapper that stores solver assignments per depot snapshot. Distance
// matrices are not cached.
package cache

import (
	"context"
	"errors"
	"time"

	"coldroute/internal/config"
)

// Backend names accepted by config.CacheConfig.Driver.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ErrKeyNotFound is returned when a requested key does not exist.
var ErrKeyNotFound = errors.New("cache: key not found")

// ErrCacheClosed is returned when an operation runs against a closed cache.
var ErrCacheClosed = errors.New("cache: closed")

// Cache is the common surface both backends implement.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Stats reports cache hit/miss behavior for the metrics endpoint.
type Stats struct {
	TotalKeys int64
	Hits      int64
	Misses    int64
	HitRate   float64
	Backend   string
}

// Options configures a Cache built by New.
type Options struct {
	Backend         string
	DefaultTTL      time.Duration
	MaxEntries      int
	CleanupInterval time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// FromConfig builds Options from the process's cache configuration block.
func FromConfig(cfg config.CacheConfig) Options {
	return Options{
		Backend:       cfg.Driver,
		DefaultTTL:    cfg.DefaultTTL,
		MaxEntries:    cfg.MaxEntries,
		RedisAddr:     cfg.Address(),
		RedisPassword: cfg.Password,
		RedisDB:       cfg.DB,
	}
}

// New builds the cache backend named by opts.Backend, defaulting to an
// in-memory cache for an empty or unrecognized driver name.
func New(opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendRedis:
		return newRedisCache(opts)
	default:
		return newMemoryCache(opts), nil
	}
}
