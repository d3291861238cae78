package ratelimit

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	count   int
	resetAt time.Time
}

// FixedWindow is an in-process Limiter. Entries whose window has ended are
// swept at most once per window, so memory stays bounded by the number of
// keys active in roughly the last two windows.
type FixedWindow struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	entries   map[string]*counter
	nextSweep time.Time
}

// Option configures a FixedWindow.
type Option func(*FixedWindow)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *FixedWindow) { l.now = now }
}

func NewFixedWindow(max int, window time.Duration, opts ...Option) *FixedWindow {
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &FixedWindow{
		max:     max,
		window:  window,
		now:     time.Now,
		entries: make(map[string]*counter),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *FixedWindow) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &counter{resetAt: now.Add(l.window)}
		l.entries[key] = e
	}
	if e.count >= l.max {
		return Decision{Allowed: false, RetryAfter: e.resetAt.Sub(now)}, nil
	}
	e.count++
	return Decision{Allowed: true}, nil
}

// Len returns the number of tracked keys.
func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// sweep drops expired entries. Caller holds l.mu.
func (l *FixedWindow) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for k, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, k)
		}
	}
	l.nextSweep = now.Add(l.window)
}

var _ Limiter = (*FixedWindow)(nil)
