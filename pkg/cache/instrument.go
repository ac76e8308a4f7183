package cache

import (
	"context"
	"time"

	"github.com/matzehuels/cellsolve/pkg/observability"
)

// instrumented reports every lookup and write to the registered cache hooks.
type instrumented struct {
	Cache
}

// Instrument wraps c so that hits, misses and writes reach
// [observability.Cache]. Wrapping a nil cache yields a NullCache.
func Instrument(c Cache) Cache {
	if c == nil {
		c = NewNullCache()
	}
	if _, ok := c.(*instrumented); ok {
		return c
	}
	return &instrumented{Cache: c}
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}
