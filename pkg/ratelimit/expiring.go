package ratelimit

import (
	"sync"
	"time"
)

// ExpiringTokenBucket is a fixed-window quota (e.g. 5 actions per 30 minutes).
// Unlike RefillingTokenBucket it never refills gradually: once the window
// elapses the whole bucket snaps back to max in one cliff reset.
type ExpiringTokenBucket struct {
	max       int
	expiresIn time.Duration

	mu      sync.Mutex
	buckets map[string]*expiringBucket
	now     func() time.Time
}

type expiringBucket struct {
	count     int
	createdAt time.Time
}

func NewExpiringTokenBucket(max int, expiresIn time.Duration) *ExpiringTokenBucket {
	return &ExpiringTokenBucket{
		max:       max,
		expiresIn: expiresIn,
		buckets:   make(map[string]*expiringBucket),
		now:       time.Now,
	}
}

// Consume takes cost tokens from key's current window. First touch carries the
// same leniency as RefillingTokenBucket: the initial request is granted even
// when cost exceeds max.
func (b *ExpiringTokenBucket) Consume(key string, cost int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	bk, ok := b.buckets[key]
	if !ok {
		b.buckets[key] = &expiringBucket{count: b.max - cost, createdAt: now}
		return true
	}
	if now.Sub(bk.createdAt) >= b.expiresIn {
		bk.count = b.max
		bk.createdAt = now
	}
	if bk.count < cost {
		return false
	}
	bk.count -= cost
	return true
}

// Check reports whether Consume(key, cost) would succeed right now, without
// mutating the bucket.
func (b *ExpiringTokenBucket) Check(key string, cost int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	bk, ok := b.buckets[key]
	if !ok {
		return true
	}
	count := bk.count
	if b.now().Sub(bk.createdAt) >= b.expiresIn {
		count = b.max
	}
	return count >= cost
}

// Reset forgets the key entirely; the next Consume is treated as first-ever.
func (b *ExpiringTokenBucket) Reset(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.buckets, key)
}
