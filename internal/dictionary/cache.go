package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Key prefix for cached verdicts
	verdictKeyPrefix = "dict:verdict:"

	// DefaultCacheTTL is how long a verdict is kept
	DefaultCacheTTL = 24 * time.Hour
)

// CacheConfig holds configuration for the Redis verdict cache
type CacheConfig struct {
	Source      Source
	RedisClient *redis.Client
	TTL         time.Duration
	Logger      *slog.Logger
}

// CachedSource remembers verdicts from another source in Redis.
// Only answers are cached; source errors always go back to the caller.
type CachedSource struct {
	source Source
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSource creates a new Redis-backed verdict cache
func NewCachedSource(cfg *CacheConfig) (*CachedSource, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Source == nil {
		return nil, errors.New("source cannot be nil")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &CachedSource{
		source: cfg.Source,
		client: cfg.RedisClient,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Check implements Source
func (c *CachedSource) Check(ctx context.Context, word string) (bool, error) {
	key := verdictKey(word)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached == "1", nil
	case errors.Is(err, redis.Nil):
		// miss
	default:
		c.logger.Warn("verdict cache read failed", "word", word, "error", err)
	}

	ok, err := c.source.Check(ctx, word)
	if err != nil {
		return false, err
	}

	value := "0"
	if ok {
		value = "1"
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("verdict cache write failed", "word", word, "error", err)
	}

	return ok, nil
}

func verdictKey(word string) string {
	return fmt.Sprintf("%s%s", verdictKeyPrefix, word)
}
