package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newExpiringBucketForTest(max int, expiresIn time.Duration) (*ExpiringTokenBucket, *fakeClock) {
	clk := newFakeClock()
	b := NewExpiringTokenBucket(max, expiresIn)
	b.now = clk.Now
	return b, clk
}

func TestExpiringConsumeWithinWindow(t *testing.T) {
	b, _ := newExpiringBucketForTest(5, 30*time.Minute)

	for i := 0; i < 5; i++ {
		assert.True(t, b.Consume("k", 1), "consume %d", i)
	}
	assert.False(t, b.Consume("k", 1))
}

func TestExpiringCliffReset(t *testing.T) {
	b, clk := newExpiringBucketForTest(5, 30*time.Minute)

	assert.True(t, b.Consume("k", 5))

	// 1ms before expiry the pre-reset state still applies.
	clk.Advance(30*time.Minute - time.Millisecond)
	assert.False(t, b.Consume("k", 1))

	// At expiry the whole capacity returns at once, not one token at a time.
	clk.Advance(time.Millisecond)
	assert.True(t, b.Consume("k", 5))
	assert.False(t, b.Consume("k", 1))
}

func TestExpiringReset(t *testing.T) {
	b, _ := newExpiringBucketForTest(2, time.Hour)

	assert.True(t, b.Consume("k", 2))
	assert.False(t, b.Consume("k", 1))

	b.Reset("k")
	// Key forgotten: first-touch semantics apply again.
	assert.True(t, b.Consume("k", 2))
}

func TestExpiringCheckDoesNotMutate(t *testing.T) {
	b, clk := newExpiringBucketForTest(2, time.Minute)

	assert.True(t, b.Check("k", 2))
	assert.True(t, b.Consume("k", 2))
	assert.False(t, b.Check("k", 1))

	clk.Advance(time.Minute)
	assert.True(t, b.Check("k", 2))
	assert.True(t, b.Check("k", 2), "check must not consume the reset window")
}
