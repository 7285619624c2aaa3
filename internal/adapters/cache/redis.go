package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/aromabalance/balance/internal/domain/model"
	"github.com/aromabalance/balance/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "aroma:video:"
	defaultRedisTTL    = 24 * time.Hour
)

// RedisOption applies a configuration option to the Redis cache.
type RedisOption func(*redisCache)

// WithKeyPrefix namespaces all keys written by the cache.
func WithKeyPrefix(prefix string) RedisOption {
	return func(c *redisCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithRedisTTL sets the expiry of stored entries.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(c *redisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithRedisLogger sets the logger used to report backend failures.
func WithRedisLogger(l logger.Logger) RedisOption {
	return func(c *redisCache) {
		if l != nil {
			c.log = l
		}
	}
}

type redisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	log    logger.Logger
	stored atomic.Int64
}

// NewRedis creates a cache backed by Redis. Entries are JSON-encoded and
// shared between service instances.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) Cache {
	c := &redisCache{
		client: client,
		prefix: defaultRedisPrefix,
		ttl:    defaultRedisTTL,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) Get(ctx context.Context, key string) ([]model.VideoCandidate, bool) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn(ctx, "redis cache get failed", logger.String("key", key), logger.Error(err))
		}
		return nil, false
	}
	var candidates []model.VideoCandidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		c.log.Warn(ctx, "redis cache entry is corrupt", logger.String("key", key), logger.Error(err))
		return nil, false
	}
	return candidates, true
}

func (c *redisCache) Put(ctx context.Context, key string, candidates []model.VideoCandidate) {
	raw, err := json.Marshal(candidates)
	if err != nil {
		c.log.Warn(ctx, "redis cache encode failed", logger.String("key", key), logger.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		c.log.Warn(ctx, "redis cache put failed", logger.String("key", key), logger.Error(err))
		return
	}
	c.stored.Add(1)
}

// Size reports how many entries this instance has written. Redis owns
// expiry, so the figure is an upper bound of what is still stored.
func (c *redisCache) Size() int64 {
	return c.stored.Load()
}

// Noop is a Cache that never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]model.VideoCandidate, bool) { return nil, false }
func (Noop) Put(context.Context, string, []model.VideoCandidate)        {}
func (Noop) Size() int64                                                { return 0 }
