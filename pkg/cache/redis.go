package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin wrapper over a redis client. A miss is reported as
// (nil, nil) so callers can distinguish "not cached" from a transport error.
type Cache struct {
	rdb    *redis.Client
	logger *slog.Logger
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config, logger *slog.Logger) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Cache{rdb: rdb, logger: logger}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
		return nil, err
	}
	return b, nil
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
		return err
	}
	return nil
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache del failed", "keys", keys, "error", err)
		return err
	}
	return nil
}

// DelByPattern removes every key matching the glob pattern, scanning in
// batches to avoid blocking redis.
func (c *Cache) DelByPattern(ctx context.Context, pattern string) error {
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache scan failed", "pattern", pattern, "error", err)
		return err
	}
	return c.Del(ctx, keys...)
}
