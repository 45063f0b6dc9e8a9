package blueprint

import (
	"context"
	"encoding/json"
	"time"

	"github.com/assys/brickguide/pkg/cache"
	"github.com/assys/brickguide/pkg/observability"
)

// CachedSource serves List and Load from a cache, falling back to the inner
// source on a miss. Cache failures are treated as misses.
type CachedSource struct {
	inner Source
	cache cache.Cache
	keyer cache.Keyer
	label string
	ttl   time.Duration
}

// NewCachedSource wraps inner. label distinguishes sources that share a
// cache, e.g. "dir" or "mongo".
func NewCachedSource(inner Source, c cache.Cache, keyer cache.Keyer, label string, ttl time.Duration) *CachedSource {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedSource{inner: inner, cache: c, keyer: keyer, label: label, ttl: ttl}
}

func (s *CachedSource) List(ctx context.Context) ([]string, error) {
	key := s.keyer.ListKey(s.label)
	var names []string
	if s.lookup(ctx, "blueprint_list", key, &names) {
		return names, nil
	}
	names, err := s.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, "blueprint_list", key, names)
	return names, nil
}

func (s *CachedSource) Load(ctx context.Context, name string) (*Blueprint, error) {
	key := s.keyer.BlueprintKey(s.label, name)
	var b Blueprint
	if s.lookup(ctx, "blueprint", key, &b) {
		return &b, nil
	}
	loaded, err := s.inner.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	s.store(ctx, "blueprint", key, loaded)
	return loaded, nil
}

// Invalidate drops the cached listing and, if name is set, that blueprint.
func (s *CachedSource) Invalidate(ctx context.Context, name string) error {
	if err := s.cache.Delete(ctx, s.keyer.ListKey(s.label)); err != nil {
		return err
	}
	if name == "" {
		return nil
	}
	return s.cache.Delete(ctx, s.keyer.BlueprintKey(s.label, name))
}

func (s *CachedSource) lookup(ctx context.Context, keyType, key string, v any) bool {
	data, hit, err := s.cache.Get(ctx, key)
	if err != nil || !hit || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

func (s *CachedSource) store(ctx context.Context, keyType, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if s.cache.Set(ctx, key, data, s.ttl) == nil {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
}

var _ Source = (*CachedSource)(nil)
