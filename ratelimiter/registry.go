package ratelimiter

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Registry hands out one limiter per key (client address, user, ...).
// Limiters not used for a while can be dropped with Sweep.
type Registry interface {
	GetOrCreate(key string) Limiter
	Sweep(maxIdle time.Duration) int
	Len() int
}

type registryEntry struct {
	limiter  Limiter
	lastUsed atomic.Int64 // unix nanos
}

type mapRegistry struct {
	registry map[string]*registryEntry
	factory  func() Limiter
	mu       sync.RWMutex
	now      func() time.Time
}

// NewRegistry creates an in-memory registry that builds missing limiters with factory.
func NewRegistry(factory func() Limiter) Registry {
	return &mapRegistry{
		registry: make(map[string]*registryEntry),
		factory:  factory,
		now:      time.Now,
	}
}

// NewRequestRegistry creates a registry of RequestLimiters admitting requestsPerMinute each.
func NewRequestRegistry(requestsPerMinute int) Registry {
	return NewRegistry(func() Limiter { return New(requestsPerMinute) })
}

func (r *mapRegistry) GetOrCreate(key string) Limiter {
	now := r.now().UnixNano()

	r.mu.RLock()
	entry, ok := r.registry[key]
	r.mu.RUnlock()
	if ok {
		entry.lastUsed.Store(now)
		return entry.limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// another goroutine may have created it between the locks
	if entry, ok := r.registry[key]; ok {
		entry.lastUsed.Store(now)
		return entry.limiter
	}
	entry = &registryEntry{limiter: r.factory()}
	entry.lastUsed.Store(now)
	r.registry[key] = entry
	return entry.limiter
}

// Sweep drops limiters unused for longer than maxIdle and returns how many
// were removed. A request limiter idle for a full refill interval is back at
// capacity, so dropping it loses no state.
func (r *mapRegistry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle).UnixNano()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, entry := range r.registry {
		if entry.lastUsed.Load() < cutoff {
			delete(r.registry, key)
			removed++
		}
	}
	return removed
}

func (r *mapRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registry)
}

// SweepEvery runs registry.Sweep(maxIdle) every interval until ctx is done.
func SweepEvery(ctx context.Context, registry Registry, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			registry.Sweep(maxIdle)
		}
	}
}
