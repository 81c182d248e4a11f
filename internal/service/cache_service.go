package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Payphone-Digital/bilemo/pkg/cache"
	"github.com/Payphone-Digital/bilemo/pkg/circuit"
	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"github.com/Payphone-Digital/bilemo/pkg/redis"
	"go.uber.org/zap"
)

type cacheBackend interface {
	get(ctx context.Context, key string) ([]byte, bool, error)
	set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	deletePrefix(ctx context.Context, prefix string) (int, error)
	name() string
}

// redisBackend skips Redis while its breaker is open so an outage costs no round trips
type redisBackend struct {
	client  redis.Client
	breaker *circuit.Breaker
}

func (b redisBackend) get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	err = b.breaker.Execute(func() error {
		var getErr error
		data, ok, getErr = b.client.Get(ctx, key)
		return getErr
	})
	return data, ok, err
}

func (b redisBackend) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.breaker.Execute(func() error {
		return b.client.Set(ctx, key, value, ttl)
	})
}

// deletePrefix always reaches Redis; a skipped invalidation would leave stale pages behind
func (b redisBackend) deletePrefix(ctx context.Context, prefix string) (int, error) {
	deleted, err := b.client.DeleteByPattern(ctx, prefix+"*")
	b.breaker.Record(err)
	return deleted, err
}

func (b redisBackend) name() string { return "redis" }

type memoryBackend struct {
	cache *cache.Cache
}

func (b memoryBackend) get(_ context.Context, key string) ([]byte, bool, error) {
	data, ok := b.cache.Get(key)
	return data, ok, nil
}

func (b memoryBackend) set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.cache.Set(key, value, ttl)
	return nil
}

func (b memoryBackend) deletePrefix(_ context.Context, prefix string) (int, error) {
	return b.cache.DeletePrefix(prefix), nil
}

func (b memoryBackend) name() string { return "memory" }

// CacheService stores listing pages as JSON. Failures are logged and treated as misses.
type CacheService struct {
	backend cacheBackend
	ttl     time.Duration
}

// NewRedisCacheService caches in Redis
func NewRedisCacheService(client redis.Client, ttl time.Duration) *CacheService {
	return &CacheService{
		backend: redisBackend{client: client, breaker: circuit.NewBreaker("redis-cache", circuit.DefaultConfig())},
		ttl:     ttl,
	}
}

// NewMemoryCacheService caches in process memory, for deployments without Redis
func NewMemoryCacheService(c *cache.Cache, ttl time.Duration) *CacheService {
	return &CacheService{backend: memoryBackend{cache: c}, ttl: ttl}
}

// GetJSON decodes the entry at key into dest and reports whether it was found
func (s *CacheService) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if s == nil || s.ttl <= 0 {
		return false
	}

	data, ok, err := s.backend.get(ctx, key)
	if err != nil {
		logger.GetLogger().Warn("Failed to get cached value",
			zap.String("cache_key", key),
			zap.String("backend", s.backend.name()),
			zap.Error(err),
		)
		return false
	}
	if !ok {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		logger.GetLogger().Warn("Failed to decode cached value",
			zap.String("cache_key", key),
			zap.Error(err),
		)
		return false
	}

	logger.GetLogger().Debug("Cache hit",
		zap.String("cache_key", key),
		zap.Int("data_size", len(data)),
	)
	return true
}

func (s *CacheService) SetJSON(ctx context.Context, key string, value interface{}) {
	if s == nil || s.ttl <= 0 {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		logger.GetLogger().Warn("Failed to encode value for cache",
			zap.String("cache_key", key),
			zap.Error(err),
		)
		return
	}

	if err := s.backend.set(ctx, key, data, s.ttl); err != nil {
		logger.GetLogger().Warn("Failed to set cached value",
			zap.String("cache_key", key),
			zap.String("backend", s.backend.name()),
			zap.Error(err),
		)
		return
	}

	logger.GetLogger().Debug("Value cached",
		zap.String("cache_key", key),
		zap.Int("data_size", len(data)),
		zap.Duration("ttl", s.ttl),
	)
}

// InvalidatePrefix drops every entry under prefix
func (s *CacheService) InvalidatePrefix(ctx context.Context, prefix string) {
	if s == nil {
		return
	}

	deleted, err := s.backend.deletePrefix(ctx, prefix)
	if err != nil {
		logger.GetLogger().Warn("Failed to invalidate cache",
			zap.String("prefix", prefix),
			zap.String("backend", s.backend.name()),
			zap.Error(err),
		)
		return
	}

	logger.GetLogger().Debug("Cache invalidated",
		zap.String("prefix", prefix),
		zap.Int("deleted_count", deleted),
	)
}
