package ratelimiter

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RequestLimiter admits a fixed number of requests per minute.
type RequestLimiter struct {
	bucket *TokenBucket
}

// Ensure RequestLimiter implements Limiter.
var _ Limiter = (*RequestLimiter)(nil)

// New creates a limiter that admits requestsPerMinute requests per minute.
func New(requestsPerMinute int) *RequestLimiter {
	return &RequestLimiter{
		bucket: NewTokenBucket(requestsPerMinute, requestsPerMinute, time.Minute),
	}
}

func (rl *RequestLimiter) Allow() bool {
	return rl.bucket.TryConsume(1)
}

func (rl *RequestLimiter) TimeUntilAvailable() time.Duration {
	return rl.bucket.TimeUntilAvailable(1)
}

// Wait waits until a request is admitted (up to maxWait), then consumes it.
// If maxWait is 0, there is no limit on how long to wait.
func (rl *RequestLimiter) Wait(ctx context.Context, maxWait time.Duration) error {
	for {
		if rl.Allow() {
			return nil
		}

		waitDuration := rl.TimeUntilAvailable()
		if maxWait > 0 && waitDuration > maxWait {
			return fmt.Errorf("rate limit wait time %v exceeds max wait %v", waitDuration, maxWait)
		}
		if waitDuration <= 0 {
			waitDuration = time.Millisecond
		}

		timer := time.NewTimer(waitDuration)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TokenBucket implements a token bucket rate limit algorithm.
// Tokens replenish proportionally to elapsed time, up to capacity.
type TokenBucket struct {
	mu             sync.Mutex
	capacity       int
	remaining      int
	refillInterval time.Duration
	lastRefill     time.Time
	now            func() time.Time
}

// NewTokenBucket creates a new token bucket.
func NewTokenBucket(capacity int, initialTokens int, refillInterval time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:       capacity,
		remaining:      initialTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
		now:            time.Now,
	}
}

// TryConsume atomically checks and consumes tokens.
func (tb *TokenBucket) TryConsume(tokens int) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	tb.refill(now)
	if tokens <= tb.remaining {
		tb.remaining -= tokens
		return true
	}
	return false
}

// TimeUntilAvailable returns how long until tokens would be available (read-only).
func (tb *TokenBucket) TimeUntilAvailable(tokens int) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	effectiveRemaining := tb.available(tb.now())
	if tokens <= effectiveRemaining {
		return 0
	}
	if tb.capacity <= 0 {
		return tb.refillInterval
	}

	tokensNeeded := tokens - effectiveRemaining
	tokenRefillRate := float64(tb.capacity) / float64(tb.refillInterval)
	waitDuration := time.Duration(float64(tokensNeeded) / tokenRefillRate)

	// Add a small buffer (10% extra time)
	return waitDuration + (waitDuration / 10)
}

// available returns the remaining tokens including partial refill, without mutating state.
func (tb *TokenBucket) available(now time.Time) int {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed >= tb.refillInterval {
		return tb.capacity
	}
	if elapsed <= 0 {
		return tb.remaining
	}
	replenished := int(float64(tb.capacity) * (float64(elapsed) / float64(tb.refillInterval)))
	return min(tb.capacity, tb.remaining+replenished)
}

func (tb *TokenBucket) refill(now time.Time) {
	remaining := tb.available(now)
	if remaining != tb.remaining || now.Sub(tb.lastRefill) >= tb.refillInterval {
		tb.remaining = remaining
		tb.lastRefill = now
	}
}
