package ratelimit

import (
	"sync"
	"time"
)

// RefillingTokenBucket is a smoothed-rate limiter. Each key owns a bucket of
// at most max tokens that regains one token per refill interval. Buckets are
// created lazily on first touch and never evicted; key cardinality is bounded
// by distinct users/IPs, not by request volume.
type RefillingTokenBucket struct {
	max            int
	refillInterval time.Duration

	mu      sync.Mutex
	buckets map[string]*refillBucket
	now     func() time.Time
}

type refillBucket struct {
	count      int
	refilledAt time.Time
}

func NewRefillingTokenBucket(max int, refillInterval time.Duration) *RefillingTokenBucket {
	return &RefillingTokenBucket{
		max:            max,
		refillInterval: refillInterval,
		buckets:        make(map[string]*refillBucket),
		now:            time.Now,
	}
}

// Consume takes cost tokens from key's bucket, reporting whether the request
// is allowed.
//
// First touch is lenient by contract: a never-seen key is granted even when
// cost exceeds max, leaving a negative count that must refill back above zero
// before the key is admitted again.
func (b *RefillingTokenBucket) Consume(key string, cost int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	bk, ok := b.buckets[key]
	if !ok {
		b.buckets[key] = &refillBucket{count: b.max - cost, refilledAt: now}
		return true
	}

	// refilledAt advances by whole intervals only, so the partial interval
	// remainder carries forward to the next call. Clamped at zero in case
	// the wall clock stepped backwards.
	refill := max(int(now.Sub(bk.refilledAt)/b.refillInterval), 0)
	bk.count = min(bk.count+refill, b.max)
	bk.refilledAt = bk.refilledAt.Add(time.Duration(refill) * b.refillInterval)

	if bk.count < cost {
		return false
	}
	bk.count -= cost
	return true
}

// Check reports whether Consume(key, cost) would succeed right now. It
// projects the refill without writing any state back.
func (b *RefillingTokenBucket) Check(key string, cost int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	bk, ok := b.buckets[key]
	if !ok {
		return true
	}
	refill := max(int(b.now().Sub(bk.refilledAt)/b.refillInterval), 0)
	return min(bk.count+refill, b.max) >= cost
}
