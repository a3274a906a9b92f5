// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about topology maintenance, net extraction, cache
// operations, and API requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so library packages never
// import an observability backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetExtractHooks(&myExtractHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Extract().OnExtractStart(ctx, segments, pins)
//	// ... extract nets ...
//	observability.Extract().OnExtractComplete(ctx, nets, junctions, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Topology Hooks
// =============================================================================

// TopologyHooks receives events from structural maintenance of the wire graph.
type TopologyHooks interface {
	// OnCleanup records a cleanup run that changed the graph.
	OnCleanup(ctx context.Context, merged, dropped, split, collapsed int, duration time.Duration)

	// OnPlacementUpdate records a component move applied to its pin nodes.
	// queued is true when the update was deferred behind an active gesture.
	OnPlacementUpdate(ctx context.Context, placement string, pins int, queued bool)
}

// =============================================================================
// Extract Hooks
// =============================================================================

// ExtractHooks receives events from net extraction.
type ExtractHooks interface {
	OnExtractStart(ctx context.Context, segments, pins int)
	OnExtractComplete(ctx context.Context, nets, junctions int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopTopologyHooks is a no-op implementation of TopologyHooks.
type NoopTopologyHooks struct{}

func (NoopTopologyHooks) OnCleanup(context.Context, int, int, int, int, time.Duration) {}
func (NoopTopologyHooks) OnPlacementUpdate(context.Context, string, int, bool)         {}

// NoopExtractHooks is a no-op implementation of ExtractHooks.
type NoopExtractHooks struct{}

func (NoopExtractHooks) OnExtractStart(context.Context, int, int)                          {}
func (NoopExtractHooks) OnExtractComplete(context.Context, int, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	topologyHooks TopologyHooks = NoopTopologyHooks{}
	extractHooks  ExtractHooks  = NoopExtractHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetTopologyHooks registers custom topology hooks.
// This should be called once at application startup before any editing.
func SetTopologyHooks(h TopologyHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		topologyHooks = h
	}
}

// SetExtractHooks registers custom extraction hooks.
func SetExtractHooks(h ExtractHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		extractHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Topology returns the registered topology hooks.
func Topology() TopologyHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return topologyHooks
}

// Extract returns the registered extraction hooks.
func Extract() ExtractHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return extractHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	topologyHooks = NoopTopologyHooks{}
	extractHooks = NoopExtractHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
