package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBucket(capacity, initial int, interval time.Duration) (*TokenBucket, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	tb := NewTokenBucket(capacity, initial, interval)
	tb.now = clock.Now
	tb.lastRefill = clock.Now()
	return tb, clock
}

func TestTokenBucket(t *testing.T) {
	bucket, clock := newTestBucket(10, 10, time.Minute)

	if !bucket.TryConsume(5) {
		t.Error("failed to consume tokens from full bucket")
	}
	if bucket.remaining != 5 {
		t.Errorf("expected 5 remaining tokens, got %d", bucket.remaining)
	}

	if bucket.TryConsume(6) {
		t.Error("should not be able to consume more than remaining")
	}
	if bucket.TimeUntilAvailable(5) != 0 {
		t.Error("expected capacity for 5 tokens")
	}

	// Half an interval replenishes half the capacity.
	clock.Advance(30 * time.Second)
	if !bucket.TryConsume(10) {
		t.Error("expected partial refill to cover 10 tokens")
	}
	if bucket.TryConsume(1) {
		t.Error("bucket should be empty")
	}

	clock.Advance(time.Minute)
	if bucket.TimeUntilAvailable(10) != 0 {
		t.Error("expected full refill after one interval")
	}
}

func TestTokenBucket_TimeUntilAvailable(t *testing.T) {
	bucket, _ := newTestBucket(60, 0, time.Minute) // 1 token per second

	wait := bucket.TimeUntilAvailable(1)
	if wait < 900*time.Millisecond || wait > 1500*time.Millisecond {
		t.Errorf("expected wait around 1s, got %v", wait)
	}

	full, _ := newTestBucket(60, 60, time.Minute)
	if wait := full.TimeUntilAvailable(1); wait != 0 {
		t.Errorf("expected no wait on full bucket, got %v", wait)
	}
}

func TestRequestLimiter_Allow(t *testing.T) {
	rl := New(2)

	if !rl.Allow() {
		t.Error("1st request should be admitted")
	}
	if !rl.Allow() {
		t.Error("2nd request should be admitted")
	}
	if rl.Allow() {
		t.Error("3rd request should be rejected")
	}
	if rl.TimeUntilAvailable() <= 0 {
		t.Error("expected positive wait after exhausting requests")
	}
}

func TestRequestLimiter_Wait(t *testing.T) {
	t.Run("exceeds max wait", func(t *testing.T) {
		rl := New(1)
		rl.Allow()

		if err := rl.Wait(context.Background(), time.Millisecond); err == nil {
			t.Error("expected max wait error")
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		rl := New(1)
		rl.Allow()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := rl.Wait(ctx, 0); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("admits immediately with capacity", func(t *testing.T) {
		rl := New(5)
		if err := rl.Wait(context.Background(), time.Second); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
