package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newRefillBucketForTest(max int, interval time.Duration) (*RefillingTokenBucket, *fakeClock) {
	clk := newFakeClock()
	b := NewRefillingTokenBucket(max, interval)
	b.now = clk.Now
	return b, clk
}

func TestRefillingConsumeWithinCapacity(t *testing.T) {
	b, _ := newRefillBucketForTest(5, 30*time.Second)

	assert.True(t, b.Consume("ip:1", 2))
	assert.True(t, b.Consume("ip:1", 3))
	assert.False(t, b.Consume("ip:1", 1), "sixth token within one interval must be rejected")
}

func TestRefillingRefillsOneTokenPerInterval(t *testing.T) {
	b, clk := newRefillBucketForTest(3, 10*time.Second)

	assert.True(t, b.Consume("k", 3))
	assert.False(t, b.Consume("k", 1))

	clk.Advance(10 * time.Second)
	assert.True(t, b.Consume("k", 1))
	assert.False(t, b.Consume("k", 1))

	// Three intervals grant three tokens, capped at max.
	clk.Advance(5 * 10 * time.Second)
	assert.True(t, b.Consume("k", 3))
	assert.False(t, b.Consume("k", 1))
}

func TestRefillingPartialIntervalCarriesForward(t *testing.T) {
	b, clk := newRefillBucketForTest(3, 10*time.Second)

	assert.True(t, b.Consume("k", 3))

	// 15s = one whole interval plus a 5s remainder.
	clk.Advance(15 * time.Second)
	assert.True(t, b.Consume("k", 1))
	assert.False(t, b.Consume("k", 1))

	// The 5s remainder must still count toward the next interval.
	clk.Advance(5 * time.Second)
	assert.True(t, b.Consume("k", 1))
}

func TestRefillingFirstTouchLeniency(t *testing.T) {
	b, clk := newRefillBucketForTest(2, time.Second)

	// cost > max succeeds on first touch, driving the count negative.
	assert.True(t, b.Consume("k", 5))
	assert.False(t, b.Consume("k", 1))

	// Rejected until refills bring the count back to >= cost: count is -3,
	// so 4 refills are needed for a cost of 1.
	clk.Advance(3 * time.Second)
	assert.False(t, b.Consume("k", 1))
	clk.Advance(time.Second)
	assert.True(t, b.Consume("k", 1))
}

func TestRefillingCheckDoesNotMutate(t *testing.T) {
	b, clk := newRefillBucketForTest(2, time.Second)

	assert.True(t, b.Check("k", 2), "unseen key would be admitted")

	assert.True(t, b.Consume("k", 2))
	assert.False(t, b.Check("k", 1))

	clk.Advance(time.Second)
	// Check projects the refill without persisting it.
	assert.True(t, b.Check("k", 1))
	assert.True(t, b.Check("k", 1))
	assert.True(t, b.Consume("k", 1))
	assert.False(t, b.Consume("k", 1))
}

func TestRefillingClockStepBackwards(t *testing.T) {
	b, clk := newRefillBucketForTest(3, 10*time.Second)

	assert.True(t, b.Consume("k", 1))

	// A wall-clock step backwards must not drain tokens or move refilledAt
	// into the past.
	clk.Advance(-time.Hour)
	assert.True(t, b.Check("k", 2))
	assert.True(t, b.Consume("k", 2))
	assert.False(t, b.Consume("k", 1))

	// Once the clock catches back up, refills resume from the original
	// refilledAt.
	clk.Advance(time.Hour + 10*time.Second)
	assert.True(t, b.Consume("k", 1))
}
