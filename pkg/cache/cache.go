// Package cache stores encoded blueprints and rendered images by key.
//
// Implementations:
//
//   - [NullCache]: stores nothing; used when caching is disabled
//   - [MemoryCache]: in-process map with expiry, for tests and single-node servers
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for several server instances
//
// Keys come from a [Keyer] so that every component names entries the same
// way. Values are opaque bytes; callers choose the encoding.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry expiry. A ttl of zero keeps
// the entry until it is deleted. Get reports a miss as (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache never stores anything.
type NullCache struct{}

func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
