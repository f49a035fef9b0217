package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisCache implements Cache backed by Redis.
type redisCache struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedisCache creates a Redis-backed cache. It does not ping the server;
// an unreachable backend degrades to cache misses.
func NewRedisCache(addr, prefix string, logger zerolog.Logger) Cache {
	return &redisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

func (r *redisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
		return err
	}
	return nil
}

func (r *redisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return "", err
	}
	return value, nil
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
		return err
	}
	return nil
}

func (r *redisCache) Key(resource, id string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, resource, id)
}

// noopCache is used when caching is disabled: every read is a miss.
type noopCache struct{}

// NewNoopCache returns a cache that stores nothing.
func NewNoopCache() Cache {
	return noopCache{}
}

func (noopCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (noopCache) Get(context.Context, string) (string, error)             { return "", nil }
func (noopCache) Delete(context.Context, string) error                    { return nil }
func (noopCache) Key(resource, id string) string {
	return fmt.Sprintf("%s:%s", resource, id)
}
