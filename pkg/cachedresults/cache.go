package cachedresults

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DefaultTTL = 500 * time.Second

type Cache struct {
	Cache *cache.Cache[string]
	TTL   time.Duration
}

func (c *Cache) Setup(client *redis.Client) {
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}

	redisStore := redisstore.NewRedis(client, store.WithExpiration(c.TTL))

	c.Cache = cache.New[string](redisStore)
}

// Memoize returns the value cached under key, or runs fn and caches its result
// as JSON for ttl. A nil cache, a cache miss or a cache failure all fall
// through to fn; errors from fn are never cached.
func Memoize[T any](ctx context.Context, c *Cache, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	if c == nil || c.Cache == nil {
		return fn(ctx)
	}

	if cached, err := c.Cache.Get(ctx, key); err == nil {
		var value T
		if err := json.Unmarshal([]byte(cached), &value); err == nil {
			log.Debug().Str("key", key).Msg("Cache hit")
			return value, nil
		}
		log.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	}

	value, err := fn(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to encode value for cache")
		return value, nil
	}

	if err := c.Cache.Set(ctx, key, string(encoded), store.WithExpiration(c.TTL)); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to store value in cache")
	}

	return value, nil
}
