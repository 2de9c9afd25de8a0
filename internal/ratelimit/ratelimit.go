// Package ratelimit provides a keyed minimum-interval gate built on token buckets.
// The engine uses it to keep silent refreshes from running more often than
// once per interval per trip.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IntervalGate allows at most one event per key per interval.
// Each unique key gets its own independent token bucket.
type IntervalGate struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	interval time.Duration
}

// NewIntervalGate creates a gate with the given minimum interval between events.
func NewIntervalGate(interval time.Duration) *IntervalGate {
	return &IntervalGate{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
	}
}

// Allow reports whether an event for the given key may proceed now.
// Returns immediately without blocking.
func (g *IntervalGate) Allow(key string) bool {
	return g.getLimiter(key).Allow()
}

// getLimiter returns the limiter for a key, creating one if needed.
func (g *IntervalGate) getLimiter(key string) *rate.Limiter {
	// Fast path: read lock
	g.mu.RLock()
	limiter, exists := g.limiters[key]
	g.mu.RUnlock()

	if exists {
		return limiter
	}

	// Slow path: write lock to create
	g.mu.Lock()
	defer g.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = g.limiters[key]; exists {
		return limiter
	}

	// Burst of 1: the first event passes, subsequent ones wait out the interval.
	limiter = rate.NewLimiter(rate.Every(g.interval), 1)
	g.limiters[key] = limiter
	return limiter
}

// Forget drops the bucket for a key, typically when its trip view is torn down.
func (g *IntervalGate) Forget(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.limiters, key)
}
