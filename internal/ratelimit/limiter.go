// Package ratelimit provides per-client admission control for the search
// gateway using a trailing time window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Default admission policy: at most Limit requests per key within Window.
const (
	// DefaultLimit is the maximum admitted requests per key per window.
	DefaultLimit = 30

	// DefaultWindow is the trailing interval over which requests are counted.
	DefaultWindow = time.Minute

	// DefaultSweepInterval is how often idle keys are evicted by Run.
	DefaultSweepInterval = 5 * time.Minute
)

// Limiter admits or rejects requests per client key. Each key holds the
// timestamps of its admitted requests within the trailing window; entries
// older than the window are pruned before every admission check, so the
// count under inspection is always current.
//
// All methods are safe for concurrent use. Admission is atomic per key:
// prune, check, and append happen under one lock, so parallel requests
// sharing a key cannot undercount.
type Limiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

// New creates a limiter admitting at most limit requests per key within
// the trailing window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Admit reports whether a request for key is admitted. An admitted
// request is recorded; a rejected one is not, so rejected traffic cannot
// extend its own lockout.
func (l *Limiter) Admit(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := prune(l.hits[key], now.Add(-l.window))

	if len(recent) >= l.limit {
		l.hits[key] = recent
		return false
	}

	l.hits[key] = append(recent, now)
	return true
}

// Keys returns the number of client keys currently tracked. Used to feed
// the tracked-keys gauge.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

// Sweep evicts every key whose timestamps have all left the window,
// bounding memory under many distinct clients. Admission prunes lazily
// per key; Sweep is the complementary whole-map pass.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for key, stamps := range l.hits {
		recent := prune(stamps, cutoff)
		if len(recent) == 0 {
			delete(l.hits, key)
			continue
		}
		l.hits[key] = recent
	}
}

// Run sweeps idle keys every interval until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// prune drops timestamps at or before cutoff. Timestamps are appended in
// order, so the survivors are a suffix.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	return stamps[i:]
}
