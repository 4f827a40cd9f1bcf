// Package ratelimit counts requests per client in fixed, non-overlapping windows.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of a Consume call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type bucket struct {
	count   int
	resetAt time.Time
}

// FixedWindow allows up to maxRequests per key in each window. A window starts
// with the first request after the previous one ended, so a burst straddling a
// boundary can reach twice the limit.
type FixedWindow struct {
	mu          sync.Mutex
	window      time.Duration
	maxRequests int
	buckets     map[string]*bucket
}

func NewFixedWindow(window time.Duration, maxRequests int) *FixedWindow {
	return &FixedWindow{
		window:      window,
		maxRequests: maxRequests,
		buckets:     make(map[string]*bucket),
	}
}

// Consume counts one request for key at now. A denial keeps the current window's
// reset time.
func (l *FixedWindow) Consume(key string, now time.Time) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{count: 1, resetAt: now.Add(l.window)}
		l.buckets[key] = b

		return Decision{
			Allowed:   true,
			Remaining: max(l.maxRequests-1, 0),
			ResetAt:   b.resetAt,
		}
	}

	if b.count >= l.maxRequests {
		return Decision{Allowed: false, Remaining: 0, ResetAt: b.resetAt}
	}

	b.count++

	return Decision{
		Allowed:   true,
		Remaining: max(l.maxRequests-b.count, 0),
		ResetAt:   b.resetAt,
	}
}
