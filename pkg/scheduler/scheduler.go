// Package scheduler implements the editing client's input scheduler.
//
// Typing bursts are coalesced behind a quiet-period debounce, and every edit
// mints a monotonically increasing version. Responses are applied strictly
// last-write-wins: a result older than what is already displayed is
// discarded. In-flight requests are never interrupted on the wire; they are
// cancelled logically by version comparison when they land.
//
// The scheduler is a pure state machine with no goroutines or timers of its
// own. The caller owns the clock: it arms a timer for the deadline returned
// by OnInput and calls Fire when the timer lands. This keeps the type
// trivially testable and lets a TUI event loop drive it with its own tick
// messages.
package scheduler

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period between the last keystroke and the
// conversion request.
const DefaultDebounce = 500 * time.Millisecond

// Scheduler coalesces editor input and orders conversion results.
// Safe for concurrent use.
type Scheduler struct {
	mu       sync.Mutex
	debounce time.Duration

	content  string
	version  uint64 // latest minted version
	inFlight uint64 // version currently on the wire, 0 if none
	applied  uint64 // version of the result currently displayed
	pending  bool   // an edit is waiting for its debounce deadline
}

// New creates a scheduler with the given debounce window.
// Non-positive values fall back to DefaultDebounce.
func New(debounce time.Duration) *Scheduler {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Scheduler{debounce: debounce}
}

// OnInput records an edit. It mints a fresh version, restarts the quiet
// period, and returns the version together with the deadline at which the
// caller should call Fire. Every further edit before the deadline supersedes
// this one.
func (s *Scheduler) OnInput(content string) (version uint64, fireAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	s.content = content
	s.pending = true
	return s.version, time.Now().Add(s.debounce)
}

// Fire attempts to dispatch the request for the given version. It returns
// the content to convert and true only when version is still the latest
// pending edit; a timer that was superseded by a later keystroke returns
// false and the caller drops it.
func (s *Scheduler) Fire(version uint64) (content string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending || version != s.version {
		return "", false
	}
	s.pending = false
	s.inFlight = version
	return s.content, true
}

// OnResult records that a conversion response for the given version arrived.
// It reports whether the caller should display it: true when the version is
// newer than anything already shown, false for stale responses that lost the
// race to a later edit.
func (s *Scheduler) OnResult(version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if version == s.inFlight {
		s.inFlight = 0
	}
	if version <= s.applied {
		return false
	}
	s.applied = version
	return true
}

// Version returns the latest minted version.
func (s *Scheduler) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Pending reports whether an edit is waiting for its debounce deadline.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// InFlight returns the version currently on the wire, or 0 if none.
func (s *Scheduler) InFlight() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}
