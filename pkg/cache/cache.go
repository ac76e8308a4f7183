// Package cache stores solved layouts and rendered artifacts between runs.
//
// The pipeline addresses entries by content hash: a layout entry is keyed by
// the hash of the canonical document plus every option that changes the
// solve, so two runs over the same document with the same options share one
// entry. Three backends are provided:
//
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for `cellsolve serve` deployments
//   - [NullCache]: caching disabled
//
// [Instrument] wraps any backend and reports hits, misses and writes to the
// registered observability hooks.
package cache

import (
	"context"
	"time"
)

// =============================================================================
// TTLs - Single Source of Truth
// =============================================================================

const (
	// TTLLayout is how long a solved document stays cached.
	TTLLayout = 7 * 24 * time.Hour

	// TTLRender is how long a rendered hierarchy artifact stays cached.
	// Renders are pure functions of a solved layout, so they live longer.
	TTLRender = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
