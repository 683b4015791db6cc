package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingWindowLimiter implements an exact sliding-log rate limiter in
// memory. Each key owns an ordered slice of request timestamps; entries
// older than the window are pruned lazily on every check. Rejected attempts
// are not recorded, so they never count toward future windows. Key entries
// are never evicted once created, a known growth limitation for long-running
// processes.
type SlidingWindowLimiter struct {
	window time.Duration
	max    int

	mu   sync.Mutex
	hits map[string][]time.Time
}

// NewSlidingWindowLimiter constructs a SlidingWindowLimiter.
func NewSlidingWindowLimiter(window time.Duration, maxRequests int) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		window: window,
		max:    maxRequests,
		hits:   make(map[string][]time.Time),
	}
}

// Allow checks whether the request should be admitted within the trailing
// window. The prune-check-append sequence runs under the mutex so two
// concurrent requests for the same key cannot both slip under the ceiling.
func (l *SlidingWindowLimiter) Allow(_ context.Context, key string, now time.Time) (Result, error) {
	if l.max <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	windowStart := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	stored := l.hits[key]
	recent := stored[:0]
	for _, hit := range stored {
		if hit.After(windowStart) {
			recent = append(recent, hit)
		}
	}

	if len(recent) >= l.max {
		l.hits[key] = recent
		return Result{Allowed: false, Remaining: 0, Reset: recent[0].Add(l.window)}, nil
	}

	recent = append(recent, now)
	l.hits[key] = recent
	return Result{Allowed: true, Remaining: l.max - len(recent), Reset: recent[0].Add(l.window)}, nil
}
