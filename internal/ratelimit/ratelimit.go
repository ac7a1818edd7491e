// Package ratelimit implements a per-key sliding-window request limiter.
// It is the only cross-request in-process state in the service and is
// safe for concurrent use.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter allows at most limit events per key within a sliding window.
type Limiter struct {
	limit  int
	window time.Duration

	mu   sync.Mutex
	hits map[string][]time.Time

	now func() time.Time
}

// New creates a Limiter permitting limit events per window for each key.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		hits:   map[string][]time.Time{},
		now:    time.Now,
	}
}

// Allow records an event for key if it is within the limit. When the
// limit is exceeded it returns false together with the duration the
// caller should wait before retrying.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.limit {
		l.hits[key] = recent
		retryAfter := recent[0].Sub(cutoff)
		return false, retryAfter
	}

	l.hits[key] = append(recent, now)
	return true, 0
}

// Prune drops keys whose events have all left the window. Intended to be
// called periodically so the map does not grow without bound.
func (l *Limiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for key, times := range l.hits {
		live := false
		for _, t := range times {
			if t.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.hits, key)
		}
	}
}
