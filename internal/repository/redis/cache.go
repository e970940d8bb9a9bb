package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache is a read-through JSON cache for directory records.
type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

func New(client *redis.Client) *Cache {
	return &Cache{rdb: client}
}

// lookup reports a hit only when the key exists and decodes into out.
// Redis errors and stale payloads are both misses.
func (c *Cache) lookup(ctx context.Context, key string, out any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	return json.Unmarshal(raw, out) == nil
}

func (c *Cache) store(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}

	_ = c.rdb.Set(ctx, key, string(raw), ttl).Err()
}

// GetOrSetJSON returns the cached value for key or loads, caches and returns
// it. Concurrent misses on one key share a single load. A failing cache is
// treated as a miss so reads keep working while Redis is unavailable.
// Loader errors are returned as is and never cached.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	var v T
	if c.lookup(ctx, key, &v) {
		return v, nil
	}

	shared, err, _ := c.sf.Do(key, func() (any, error) {
		var again T
		if c.lookup(ctx, key, &again) {
			return again, nil
		}

		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, loaded, ttl)

		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	out, ok := shared.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("redis.GetOrSetJSON: %s holds %T", key, shared)
	}

	return out, nil
}
