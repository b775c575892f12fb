package scheduler

import (
	"fmt"
	"testing"
	"time"
)

func TestBurstCoalescesToSingleFire(t *testing.T) {
	s := New(DefaultDebounce)

	var versions []uint64
	for i := 0; i < 5; i++ {
		v, _ := s.OnInput(fmt.Sprintf("draft %d", i))
		versions = append(versions, v)
	}

	// Only the timer armed by the last keystroke may fire.
	fired := 0
	for _, v := range versions {
		if _, ok := s.Fire(v); ok {
			fired++
			if v != versions[len(versions)-1] {
				t.Errorf("fired version %d, want only the last (%d)", v, versions[len(versions)-1])
			}
		}
	}
	if fired != 1 {
		t.Errorf("fired %d times, want exactly 1", fired)
	}
}

func TestFireReturnsLatestContent(t *testing.T) {
	s := New(time.Millisecond)

	s.OnInput("first")
	s.OnInput("second")
	v, _ := s.OnInput("third")

	content, ok := s.Fire(v)
	if !ok {
		t.Fatal("Fire() ok = false, want true for the latest version")
	}
	if content != "third" {
		t.Errorf("content = %q, want %q", content, "third")
	}
}

func TestVersionsAreMonotonic(t *testing.T) {
	s := New(time.Millisecond)

	var prev uint64
	for i := 0; i < 10; i++ {
		v, _ := s.OnInput("x")
		if v <= prev {
			t.Fatalf("version %d not greater than previous %d", v, prev)
		}
		prev = v
	}
}

func TestFireIsOneShot(t *testing.T) {
	s := New(time.Millisecond)
	v, _ := s.OnInput("draft")

	if _, ok := s.Fire(v); !ok {
		t.Fatal("first Fire() ok = false, want true")
	}
	if _, ok := s.Fire(v); ok {
		t.Error("second Fire() ok = true, want false")
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	s := New(time.Millisecond)

	if !s.OnResult(7) {
		t.Error("OnResult(7) = false, want true for a fresh result")
	}
	if s.OnResult(5) {
		t.Error("OnResult(5) = true, want false after 7 was displayed")
	}
	if s.OnResult(7) {
		t.Error("OnResult(7) = true, want false for a duplicate")
	}
	if !s.OnResult(9) {
		t.Error("OnResult(9) = false, want true")
	}
}

func TestEditDuringFlightSupersedesResult(t *testing.T) {
	s := New(time.Millisecond)

	v1, _ := s.OnInput("first")
	if _, ok := s.Fire(v1); !ok {
		t.Fatal("Fire(v1) should dispatch")
	}

	// A new keystroke while v1 is on the wire.
	v2, _ := s.OnInput("second")
	if _, ok := s.Fire(v2); !ok {
		t.Fatal("Fire(v2) should dispatch")
	}

	// v2's response lands first, then v1's straggles in.
	if !s.OnResult(v2) {
		t.Error("OnResult(v2) = false, want true")
	}
	if s.OnResult(v1) {
		t.Error("OnResult(v1) = true, want false: older than the displayed result")
	}
}

func TestInFlightTracking(t *testing.T) {
	s := New(time.Millisecond)

	if s.InFlight() != 0 {
		t.Fatalf("InFlight() = %d, want 0 initially", s.InFlight())
	}

	v, _ := s.OnInput("draft")
	s.Fire(v)
	if s.InFlight() != v {
		t.Errorf("InFlight() = %d, want %d", s.InFlight(), v)
	}

	s.OnResult(v)
	if s.InFlight() != 0 {
		t.Errorf("InFlight() = %d, want 0 after the result landed", s.InFlight())
	}
}

func TestOnInputDeadlineUsesDebounce(t *testing.T) {
	s := New(100 * time.Millisecond)

	before := time.Now()
	_, fireAt := s.OnInput("draft")

	if d := fireAt.Sub(before); d < 90*time.Millisecond || d > 200*time.Millisecond {
		t.Errorf("deadline %v from now, want roughly the 100ms debounce", d)
	}
}
