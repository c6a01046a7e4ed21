package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) error
}

// InProcessLimiter is a fixed-window limiter that counts requests per key
// in memory. Limits are per process, not shared between replicas.
type InProcessLimiter struct {
	rpm    int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	counters  map[string]*counter
	lastSweep time.Time
}

type counter struct {
	count    int
	windowAt time.Time
}

// NewInProcessLimiter allows requestsPerMinute requests per key and minute.
// Zero or a negative value disables limiting.
func NewInProcessLimiter(requestsPerMinute int) *InProcessLimiter {
	return &InProcessLimiter{
		rpm:      requestsPerMinute,
		window:   time.Minute,
		now:      time.Now,
		counters: make(map[string]*counter),
	}
}

// Allow counts the request and returns ErrTooManyRequests once the key has
// exhausted its budget for the current window.
func (l *InProcessLimiter) Allow(_ context.Context, key string) error {
	if l.rpm <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	c, ok := l.counters[key]
	if !ok || now.Sub(c.windowAt) >= l.window {
		l.counters[key] = &counter{count: 1, windowAt: now}
		return nil
	}

	c.count++
	if c.count > l.rpm {
		return ErrTooManyRequests
	}
	return nil
}

// sweep drops expired windows at most once per window so the map does not
// grow with every client ever seen.
func (l *InProcessLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for k, c := range l.counters {
		if now.Sub(c.windowAt) >= l.window {
			delete(l.counters, k)
		}
	}
	l.lastSweep = now
}
