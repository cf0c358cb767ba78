package genmedia

import (
	"log/slog"
	"time"

	"github.com/mhpenta/genmedia/ratelimiter"
)

// AdapterOption configures the Adapter.
type AdapterOption func(*Adapter)

// WithLogger sets a structured logger for the adapter.
// Skipped images and dropped seeds are reported as warnings.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRateLimiter throttles calls to model through limiter.
// Use this to share a quota across adapters or swap in a distributed limiter.
func WithRateLimiter(model Model, limiter ratelimiter.Limiter) AdapterOption {
	return func(a *Adapter) {
		a.rateLimiters[model] = limiter
	}
}

// WithRequestsPerMinute installs an in-memory limiter for every known model.
// Zero or less leaves the adapter unlimited.
func WithRequestsPerMinute(requestsPerMinute int) AdapterOption {
	return func(a *Adapter) {
		if requestsPerMinute <= 0 {
			return
		}
		for _, model := range Models {
			WithRateLimiter(model, ratelimiter.New(requestsPerMinute))(a)
		}
	}
}

// WithMaxWait makes Generate wait up to d for rate limit capacity instead of
// failing immediately. Zero keeps the fail-fast behavior.
func WithMaxWait(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		a.maxWait = d
	}
}
