package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newThrottlerForTest(timeouts ...time.Duration) (*Throttler, *fakeClock) {
	clk := newFakeClock()
	th := NewThrottler(timeouts)
	th.now = clk.Now
	return th, clk
}

func TestThrottlerFirstConsumeAlwaysSucceeds(t *testing.T) {
	th, _ := newThrottlerForTest(time.Second, 2*time.Second)

	assert.True(t, th.Consume("k"))
	assert.False(t, th.Consume("k"), "immediate second call must fail")
}

func TestThrottlerEscalation(t *testing.T) {
	th, clk := newThrottlerForTest(time.Second, 2*time.Second, 4*time.Second)

	assert.True(t, th.Consume("k"))

	clk.Advance(time.Second)
	assert.True(t, th.Consume("k")) // waited timeouts[0], escalates to 2s

	clk.Advance(time.Second)
	assert.False(t, th.Consume("k"), "only 1s of the 2s timeout elapsed")
	clk.Advance(time.Second)
	assert.True(t, th.Consume("k")) // escalates to 4s

	// Capped at the last entry: repeated waits of 4s keep succeeding.
	clk.Advance(4 * time.Second)
	assert.True(t, th.Consume("k"))
	clk.Advance(4 * time.Second)
	assert.True(t, th.Consume("k"))
}

func TestThrottlerRejectedCallDoesNotAdvance(t *testing.T) {
	th, clk := newThrottlerForTest(2 * time.Second)

	assert.True(t, th.Consume("k"))
	clk.Advance(time.Second)
	assert.False(t, th.Consume("k"))

	// The failed call must not have refreshed updatedAt.
	clk.Advance(time.Second)
	assert.True(t, th.Consume("k"))
}

func TestThrottlerReset(t *testing.T) {
	th, _ := newThrottlerForTest(time.Minute)

	assert.True(t, th.Consume("k"))
	assert.False(t, th.Consume("k"))

	th.Reset("k")
	assert.True(t, th.Consume("k"), "reset key behaves as first-ever")
}

func TestThrottlerEmptyLadder(t *testing.T) {
	th, _ := newThrottlerForTest()

	// Nothing to escalate through, so every call is admitted.
	assert.True(t, th.Consume("k"))
	assert.True(t, th.Consume("k"))
	assert.True(t, th.Consume("k"))
}
