package ratelimit

import (
	"sync"
	"time"
)

// Throttler is an escalating-backoff gate for repeated failures, typically
// login attempts: each successful consume lengthens the wait before the next
// one, up to the last timeout in the ladder.
type Throttler struct {
	timeouts []time.Duration

	mu      sync.Mutex
	entries map[string]*throttleEntry
	now     func() time.Time
}

type throttleEntry struct {
	index     int
	updatedAt time.Time
}

func NewThrottler(timeouts []time.Duration) *Throttler {
	return &Throttler{
		timeouts: timeouts,
		entries:  make(map[string]*throttleEntry),
		now:      time.Now,
	}
}

// Consume reports whether key may act now. The first call for a key always
// succeeds; each later call must wait at least the current timeout since the
// last granted one, and escalates the timeout on success. A rejected call
// leaves the entry untouched.
func (t *Throttler) Consume(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	// An empty ladder has no wait to enforce.
	if len(t.timeouts) == 0 {
		return true
	}

	now := t.now()
	e, ok := t.entries[key]
	if !ok {
		t.entries[key] = &throttleEntry{index: 0, updatedAt: now}
		return true
	}
	if now.Sub(e.updatedAt) < t.timeouts[e.index] {
		return false
	}
	e.updatedAt = now
	e.index = min(e.index+1, len(t.timeouts)-1)
	return true
}

// Reset clears the key; the next Consume is treated as first-ever.
func (t *Throttler) Reset(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
}
