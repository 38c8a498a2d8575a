package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances manually so window behavior is deterministic.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(limit int, window time.Duration) (*Limiter, *fakeClock) {
	clock := newFakeClock()
	l := New(limit, window)
	l.now = clock.Now
	return l, clock
}

func TestLimiter_AdmitsUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(30, time.Minute)

	for i := 0; i < 30; i++ {
		require.True(t, l.Admit("10.0.0.1"), "request %d should be admitted", i+1)
	}
	assert.False(t, l.Admit("10.0.0.1"), "request over the limit should be rejected")
}

func TestLimiter_AdmitsAgainAfterWindowPasses(t *testing.T) {
	l, clock := newTestLimiter(30, time.Minute)

	for i := 0; i < 30; i++ {
		require.True(t, l.Admit("10.0.0.1"))
	}
	require.False(t, l.Admit("10.0.0.1"))

	clock.Advance(time.Minute + time.Second)

	assert.True(t, l.Admit("10.0.0.1"), "should admit once the window has passed")
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(2, time.Minute)

	require.True(t, l.Admit("a"))
	require.True(t, l.Admit("a"))
	require.False(t, l.Admit("a"))

	assert.True(t, l.Admit("b"), "a saturated key must not affect another key")
}

func TestLimiter_RejectionDoesNotExtendLockout(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute)

	require.True(t, l.Admit("a"))

	// Hammering while rejected must not record new timestamps.
	clock.Advance(30 * time.Second)
	require.False(t, l.Admit("a"))
	clock.Advance(31 * time.Second)

	assert.True(t, l.Admit("a"), "admission clock runs from the admitted request only")
}

func TestLimiter_SlidingWindowPrunesOldEntries(t *testing.T) {
	l, clock := newTestLimiter(3, time.Minute)

	require.True(t, l.Admit("a"))
	clock.Advance(40 * time.Second)
	require.True(t, l.Admit("a"))
	require.True(t, l.Admit("a"))
	require.False(t, l.Admit("a"))

	// The first entry ages out; the two recent ones remain.
	clock.Advance(30 * time.Second)
	assert.True(t, l.Admit("a"))
	assert.False(t, l.Admit("a"))
}

func TestLimiter_SweepEvictsIdleKeys(t *testing.T) {
	l, clock := newTestLimiter(30, time.Minute)

	require.True(t, l.Admit("idle"))
	require.True(t, l.Admit("active"))
	require.Equal(t, 2, l.Keys())

	clock.Advance(2 * time.Minute)
	require.True(t, l.Admit("active"))

	l.Sweep()

	assert.Equal(t, 1, l.Keys(), "idle key should be evicted, active key kept")
}

func TestLimiter_ConcurrentAdmissionsDoNotExceedLimit(t *testing.T) {
	l := New(30, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit("shared") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 30, admitted, "parallel dispatch must not overcount admissions")
}
