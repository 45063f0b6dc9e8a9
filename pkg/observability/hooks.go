// Package observability provides hooks for metrics and logging.
//
// Library packages emit events through the registered hooks; main registers
// an implementation at startup (see the prom subpackage). Until then every
// hook is a no-op, so libraries never depend on a metrics backend.
//
//	func main() {
//	    prom.New(registry, "brickguide").Register()
//	    // ... run application
//	}
//
// Libraries call hooks around their work:
//
//	observability.Render().OnRenderStart(ctx, "control", formats)
//	// ... draw ...
//	observability.Render().OnRenderComplete(ctx, "control", formats, layers, elapsed, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// RenderHooks receives events from the render pipeline. kind is "step",
// "control" or "support".
type RenderHooks interface {
	OnRenderStart(ctx context.Context, kind string, formats []string)
	OnRenderComplete(ctx context.Context, kind string, formats []string, layers int, duration time.Duration, err error)
}

// GuideHooks receives events from operator sessions.
type GuideHooks interface {
	// OnStep records that a session moved to step of total.
	OnStep(ctx context.Context, blueprint string, step, total int)

	// OnAcknowledge records an acknowledgment from an input client
	// (source is "gesture", "voice" or "web").
	OnAcknowledge(ctx context.Context, source, direction string)

	// OnSession records session lifecycle events ("log_in", "log_off",
	// "restart").
	OnSession(ctx context.Context, event string)
}

// CacheHooks receives events from cache lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from outgoing HTTP requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string, []string) {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, []string, int, time.Duration, error) {
}

type NoopGuideHooks struct{}

func (NoopGuideHooks) OnStep(context.Context, string, int, int)      {}
func (NoopGuideHooks) OnAcknowledge(context.Context, string, string) {}
func (NoopGuideHooks) OnSession(context.Context, string)             {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// slot holds one registered hook set and falls back to its no-op value.
type slot[T any] struct {
	mu   sync.RWMutex
	v    T
	noop T
	set  bool
}

func (s *slot[T]) store(v T, isNil bool) {
	if isNil {
		return
	}
	s.mu.Lock()
	s.v, s.set = v, true
	s.mu.Unlock()
}

func (s *slot[T]) load() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return s.noop
	}
	return s.v
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	var zero T
	s.v, s.set = zero, false
	s.mu.Unlock()
}

var (
	renderSlot = &slot[RenderHooks]{noop: NoopRenderHooks{}}
	guideSlot  = &slot[GuideHooks]{noop: NoopGuideHooks{}}
	cacheSlot  = &slot[CacheHooks]{noop: NoopCacheHooks{}}
	httpSlot   = &slot[HTTPHooks]{noop: NoopHTTPHooks{}}
)

// SetRenderHooks registers render hooks. Nil is ignored.
func SetRenderHooks(h RenderHooks) { renderSlot.store(h, h == nil) }

// SetGuideHooks registers guide hooks. Nil is ignored.
func SetGuideHooks(h GuideHooks) { guideSlot.store(h, h == nil) }

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.store(h, h == nil) }

// SetHTTPHooks registers HTTP client hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) { httpSlot.store(h, h == nil) }

func Render() RenderHooks { return renderSlot.load() }
func Guide() GuideHooks   { return guideSlot.load() }
func Cache() CacheHooks   { return cacheSlot.load() }
func HTTP() HTTPHooks     { return httpSlot.load() }

// Reset restores all hooks to their no-op defaults.
func Reset() {
	renderSlot.reset()
	guideSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
