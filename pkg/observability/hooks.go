// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about store mutations, persistence and HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main (or the server), never by libraries, so the
// diagram and persist packages stay free of metrics frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStoreHooks(metrics)
//	    observability.SetPersistHooks(metrics)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Store().OnMutation(ctx, "add_node", nodes, edges)
//	observability.Persist().OnSave(ctx, size, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from the diagram store.
type StoreHooks interface {
	// OnMutation records a committed mutation and the resulting collection sizes.
	OnMutation(ctx context.Context, op string, nodes, edges int)
}

// =============================================================================
// Persist Hooks
// =============================================================================

// Load sources reported by PersistHooks.OnLoad.
const (
	SourceStored = "stored"
	SourceSeed   = "seed"
)

// Fallback reasons reported by PersistHooks.OnLoad.
const (
	ReasonMissing = "missing"
	ReasonCorrupt = "corrupt"
	ReasonError   = "error"
)

// PersistHooks receives events from the persistence adapter.
type PersistHooks interface {
	// OnLoad records where the startup snapshot came from (SourceStored or
	// SourceSeed) and, for fallbacks, why (ReasonMissing, ReasonCorrupt or
	// ReasonError). reason is empty for stored snapshots.
	OnLoad(ctx context.Context, source, reason string)

	// OnSave records a snapshot write.
	OnSave(ctx context.Context, size int, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnResponse records a served request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnMutation(context.Context, string, int, int) {}

// NoopPersistHooks is a no-op implementation of PersistHooks.
type NoopPersistHooks struct{}

func (NoopPersistHooks) OnLoad(context.Context, string, string)            {}
func (NoopPersistHooks) OnSave(context.Context, int, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	storeHooks   StoreHooks   = NoopStoreHooks{}
	persistHooks PersistHooks = NoopPersistHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any mutation.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetPersistHooks registers custom persistence hooks.
// This should be called once at application startup before the diagram is loaded.
func SetPersistHooks(h PersistHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		persistHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Persist returns the registered persistence hooks.
func Persist() PersistHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return persistHooks
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
	storeHooks = NoopStoreHooks{}
	persistHooks = NoopPersistHooks{}
	httpHooks = NoopHTTPHooks{}
}
