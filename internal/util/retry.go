// ABOUTME: Retry backoff helper for provider API calls
// ABOUTME: Exponential growth with jitter, capped at a maximum delay
package util

import (
	"math/rand"
	"time"
)

// maxBackoff caps the delay between attempts
const maxBackoff = 30 * time.Second

// Backoff returns the delay before the given retry attempt.
// Attempt 0 is the initial call and gets no delay. The base delay
// doubles each attempt, with random jitter between -25% and +25%.
func Backoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}
