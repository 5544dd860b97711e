// ABOUTME: Tests for retry backoff calculation
// ABOUTME: Verifies zero delay on first attempt, growth, and the cap
package util

import (
	"testing"
	"time"
)

func TestBackoff_FirstAttemptNoDelay(t *testing.T) {
	if d := Backoff(time.Second, 0); d != 0 {
		t.Errorf("Backoff(_, 0) = %v, want 0", d)
	}
	if d := Backoff(time.Second, -1); d != 0 {
		t.Errorf("Backoff(_, -1) = %v, want 0", d)
	}
}

func TestBackoff_Grows(t *testing.T) {
	base := 100 * time.Millisecond
	// With ±25% jitter, attempt 2 (400ms nominal) always exceeds
	// attempt 1's maximum (250ms).
	d1 := Backoff(base, 1)
	d2 := Backoff(base, 2)
	if d2 <= d1 {
		t.Errorf("expected growth: attempt1=%v attempt2=%v", d1, d2)
	}
}

func TestBackoff_Capped(t *testing.T) {
	// Large attempt numbers must stay near the 30s cap even with jitter
	for attempt := 10; attempt <= 40; attempt += 10 {
		d := Backoff(2*time.Second, attempt)
		if d > 40*time.Second {
			t.Errorf("Backoff(2s, %d) = %v, exceeds cap with jitter", attempt, d)
		}
		if d <= 0 {
			t.Errorf("Backoff(2s, %d) = %v, must be positive", attempt, d)
		}
	}
}

func TestBackoff_JitterWithinBounds(t *testing.T) {
	base := time.Second
	for i := 0; i < 50; i++ {
		d := Backoff(base, 1)
		min := 2*base - 2*base/4
		max := 2*base + 2*base/4
		if d < min || d > max {
			t.Fatalf("Backoff out of jitter bounds: %v not in [%v, %v]", d, min, max)
		}
	}
}
