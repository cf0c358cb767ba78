package ratelimiter

import (
	"context"
	"time"
)

// Limiter defines the interface for request rate limiters.
// Implementations can be local (in-memory) or distributed.
type Limiter interface {
	// Allow atomically checks capacity and consumes one request if available.
	Allow() bool

	// TimeUntilAvailable returns how long until a request would be admitted (read-only).
	TimeUntilAvailable() time.Duration

	// Wait blocks until a request is admitted.
	// Returns error if context is cancelled or maxWait is exceeded.
	Wait(ctx context.Context, maxWait time.Duration) error
}
