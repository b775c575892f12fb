// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about conversions, engine round trips, and
// slot operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends to be plugged in
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetConvertHooks(&myConvertHooks{})
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    // ... run application
//	}
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Convert Hooks
// =============================================================================

// ConvertHooks receives events from the conversion broker.
type ConvertHooks interface {
	// OnConvertStart records an accepted conversion request.
	OnConvertStart(ctx context.Context, format string, inputBytes int)

	// OnConvertComplete records a finished conversion with its classified outcome.
	OnConvertComplete(ctx context.Context, format, outcome string, outputBytes int, duration time.Duration)

	// OnCacheHit records a conversion served from the artifact cache.
	OnCacheHit(ctx context.Context, format string)
}

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from rendering engine round trips.
type EngineHooks interface {
	// OnRequest records an outgoing engine request.
	OnRequest(ctx context.Context, format string, inputBytes int)

	// OnResponse records an engine response.
	OnResponse(ctx context.Context, format string, statusCode int, duration time.Duration)

	// OnError records an engine transport error (connect failure, timeout).
	OnError(ctx context.Context, format string, err error)
}

// =============================================================================
// Slot Hooks
// =============================================================================

// SlotHooks receives events from slot store operations.
type SlotHooks interface {
	// OnSave records a successful save into a slot.
	OnSave(ctx context.Context, slot int, size int)

	// OnLoad records a successful load from a slot.
	OnLoad(ctx context.Context, slot int)

	// OnDelete records a slot deletion.
	OnDelete(ctx context.Context, slot int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopConvertHooks is a no-op implementation of ConvertHooks.
type NoopConvertHooks struct{}

func (NoopConvertHooks) OnConvertStart(context.Context, string, int) {}
func (NoopConvertHooks) OnConvertComplete(context.Context, string, string, int, time.Duration) {
}
func (NoopConvertHooks) OnCacheHit(context.Context, string) {}

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnRequest(context.Context, string, int)                        {}
func (NoopEngineHooks) OnResponse(context.Context, string, int, time.Duration)        {}
func (NoopEngineHooks) OnError(context.Context, string, error)                        {}

// NoopSlotHooks is a no-op implementation of SlotHooks.
type NoopSlotHooks struct{}

func (NoopSlotHooks) OnSave(context.Context, int, int) {}
func (NoopSlotHooks) OnLoad(context.Context, int)      {}
func (NoopSlotHooks) OnDelete(context.Context, int)    {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	convertHooks ConvertHooks = NoopConvertHooks{}
	engineHooks  EngineHooks  = NoopEngineHooks{}
	slotHooks    SlotHooks    = NoopSlotHooks{}
	hooksMu      sync.RWMutex
)

// SetConvertHooks registers custom conversion hooks.
// This should be called once at application startup before any conversions.
func SetConvertHooks(h ConvertHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		convertHooks = h
	}
}

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any engine calls.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetSlotHooks registers custom slot store hooks.
// This should be called once at application startup before any slot operations.
func SetSlotHooks(h SlotHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		slotHooks = h
	}
}

// Convert returns the registered conversion hooks.
func Convert() ConvertHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return convertHooks
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Slots returns the registered slot store hooks.
func Slots() SlotHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return slotHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	convertHooks = NoopConvertHooks{}
	engineHooks = NoopEngineHooks{}
	slotHooks = NoopSlotHooks{}
}
