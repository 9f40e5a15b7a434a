package ratelimit

import (
	"context"
	"sync"
	"time"
)

var _ Limiter = (*MemoryLimiter)(nil)

type entry struct {
	count     int
	expiresAt time.Time
}

// MemoryLimiter is the in-process fallback backend used when no Redis is
// configured (development, tests). Counters share one mutex, so
// get-and-increment is atomic across goroutines.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]entry
	limit   int
	window  time.Duration
	now     func() time.Time
}

type MemoryOption func(*MemoryLimiter)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) { l.now = now }
}

func NewMemoryLimiter(limit int, windowDur time.Duration, opts ...MemoryOption) *MemoryLimiter {
	l := &MemoryLimiter{
		windows: make(map[string]entry),
		limit:   limit,
		window:  windowDur,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key = keyPrefix + key

	w, ok := l.windows[key]
	if !ok || !now.Before(w.expiresAt) {
		l.windows[key] = entry{count: 1, expiresAt: now.Add(l.window)}
		l.pruneLocked(now)
		return true, nil
	}

	if w.count >= l.limit {
		return false, nil
	}

	w.count++
	l.windows[key] = w
	return true, nil
}

// pruneLocked drops expired windows so the map does not grow without
// bound across distinct client keys.
func (l *MemoryLimiter) pruneLocked(now time.Time) {
	for k, w := range l.windows {
		if !now.Before(w.expiresAt) {
			delete(l.windows, k)
		}
	}
}
