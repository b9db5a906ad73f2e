// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about formatting, render cache operations and calls to the
// rendering service.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetFormatHooks(&myFormatHooks{})
//	    observability.SetHTTPHooks(&myHTTPHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Format().OnFormatStart(ctx, format)
//	// ... render and shape output ...
//	observability.Format().OnFormatComplete(ctx, format, duration, failed)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Format Hooks
// =============================================================================

// FormatHooks receives events from the formatter and the RDF builder.
type FormatHooks interface {
	// OnFormatStart records the start of a format or RDF call.
	OnFormatStart(ctx context.Context, format string)

	// OnFormatComplete records the end of a call. degraded is true when the
	// output was shaped from a render failure.
	OnFormatComplete(ctx context.Context, format string, duration time.Duration, degraded bool)

	// OnRenderFailure records an upstream or transport failure by its code.
	OnRenderFailure(ctx context.Context, code, class string)
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

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopFormatHooks is a no-op implementation of FormatHooks.
type NoopFormatHooks struct{}

func (NoopFormatHooks) OnFormatStart(context.Context, string)                         {}
func (NoopFormatHooks) OnFormatComplete(context.Context, string, time.Duration, bool) {}
func (NoopFormatHooks) OnRenderFailure(context.Context, string, string)               {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	formatHooks FormatHooks = NoopFormatHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetFormatHooks registers custom format hooks.
// This should be called once at application startup before any formatting.
func SetFormatHooks(h FormatHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		formatHooks = h
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
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Format returns the registered format hooks.
func Format() FormatHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return formatHooks
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
	formatHooks = NoopFormatHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
