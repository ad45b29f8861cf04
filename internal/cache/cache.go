// Package cache memoises prediction results keyed by model and text.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/redis/go-redis/v9"

	"github.com/Veraticus/newscheck/internal/model"
)

// DefaultTTL is how long cached predictions live.
const DefaultTTL = time.Hour

const keyPrefix = "newscheck:prediction:"

// Cache stores prediction results.
type Cache interface {
	Get(ctx context.Context, modelID, text string) (model.PredictionResult, bool, error)
	Set(ctx context.Context, modelID, text string, result model.PredictionResult) error
	Close() error
}

// Normalize folds case and whitespace, which the vectorizer ignores anyway,
// so equivalent texts share a cache entry.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// TextHash is the xxhash64 of the normalised text, in hex.
func TextHash(text string) string {
	return strconv.FormatUint(xxhash.ChecksumString64(Normalize(text)), 16)
}

// Key builds the cache key for a model and text.
func Key(modelID, text string) string {
	return keyPrefix + modelID + ":" + TextHash(text)
}

// New returns a Redis-backed cache, or a no-op cache when url is empty.
func New(url string, ttl time.Duration) (Cache, error) {
	if strings.TrimSpace(url) == "" {
		return Noop{}, nil
	}
	return NewRedisCache(url, ttl)
}

// RedisCache stores JSON-encoded results with a TTL.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache connects to the Redis server at url (redis://host:port/db).
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisCacheFromClient(redis.NewClient(opt), ttl), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get returns the cached result, if any.
func (c *RedisCache) Get(ctx context.Context, modelID, text string) (model.PredictionResult, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(modelID, text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.PredictionResult{}, false, nil
	}
	if err != nil {
		return model.PredictionResult{}, false, fmt.Errorf("cache get: %w", err)
	}

	var result model.PredictionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return model.PredictionResult{}, false, fmt.Errorf("cache decode: %w", err)
	}
	return result, true, nil
}

// Set stores result until the TTL expires.
func (c *RedisCache) Set(ctx context.Context, modelID, text string, result model.PredictionResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, Key(modelID, text), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Close releases the client's connections.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// Noop never stores anything.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string, string) (model.PredictionResult, bool, error) {
	return model.PredictionResult{}, false, nil
}

// Set discards the result.
func (Noop) Set(context.Context, string, string, model.PredictionResult) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }
