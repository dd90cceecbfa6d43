// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about renderer processes and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the sink and cache
// packages stay free of logging and metrics dependencies.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSinkHooks(&mySinkHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Sink().OnAcquire("dot", args, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Sink Hooks
// =============================================================================

// SinkHooks receives events from renderer sinks.
//
// The sink API is synchronous and context-free, so these hooks carry no context.
type SinkHooks interface {
	// OnAcquire records a renderer launch attempt with its full argument vector.
	OnAcquire(renderer string, args []string, err error)

	// OnWrite records n bytes forwarded to a renderer.
	OnWrite(n int)

	// OnRelease records the end of input, the total bytes written while
	// acquired and how long the sink was held.
	OnRelease(written int64, held time.Duration, err error)

	// OnExit records the renderer's exit status once it has been reaped.
	OnExit(renderer string, exitCode int, elapsed time.Duration)
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
// No-op Implementations
// =============================================================================

// NoopSinkHooks is a no-op implementation of SinkHooks.
type NoopSinkHooks struct{}

func (NoopSinkHooks) OnAcquire(string, []string, error)     {}
func (NoopSinkHooks) OnWrite(int)                           {}
func (NoopSinkHooks) OnRelease(int64, time.Duration, error) {}
func (NoopSinkHooks) OnExit(string, int, time.Duration)     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sinkHooks  SinkHooks  = NoopSinkHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetSinkHooks registers custom sink hooks.
// This should be called once at application startup before any sink is acquired.
func SetSinkHooks(h SinkHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sinkHooks = h
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

// Sink returns the registered sink hooks.
func Sink() SinkHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sinkHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sinkHooks = NoopSinkHooks{}
	cacheHooks = NoopCacheHooks{}
}
