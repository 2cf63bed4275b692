package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin Redis wrapper for browse-listing responses. A nil *Cache
// is valid and turns every operation into a no-op, so callers never need to
// know whether Redis is configured.
type Cache struct {
	client *redis.Client
}

func New(redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	slog.Info("redis connected", "addr", opts.Addr)
	return &Cache{client: client}, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Error("cache set failed", "key", key, "error", err)
	}
}

// FlushPrefix drops every key under the given prefix. Used to invalidate
// listing pages after any phone write.
func (c *Cache) FlushPrefix(ctx context.Context, prefix string) {
	if c == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Error("cache invalidation failed", "key", iter.Val(), "error", err)
			return
		}
	}
	if err := iter.Err(); err != nil {
		slog.Error("cache scan failed", "prefix", prefix, "error", err)
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// Key builds a deterministic cache key from a request fingerprint.
func Key(prefix, fingerprint string) string {
	sum := sha256.Sum256([]byte(fingerprint))
	return prefix + hex.EncodeToString(sum[:16])
}
