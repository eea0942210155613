// internal/ratelimit/limiter_test.go
package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckAndConsumeWithinLimit(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewWithClock(func() time.Time { return now })
	policy := Policy{MaxCalls: 3, Window: 5 * time.Minute}

	for i := 0; i < 3; i++ {
		res := limiter.CheckAndConsume("user-1", policy)
		assert.True(t, res.Allowed, "call %d should be allowed", i+1)
		assert.Equal(t, 3-i, res.Remaining)
	}

	res := limiter.CheckAndConsume("user-1", policy)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 5*time.Minute, res.RetryAfter)
}

func TestWindowExpiryResetsCounter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewWithClock(func() time.Time { return now })
	policy := Policy{MaxCalls: 3, Window: 5 * time.Minute}

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.CheckAndConsume("user-1", policy).Allowed)
	}
	assert.False(t, limiter.CheckAndConsume("user-1", policy).Allowed)

	now = now.Add(5*time.Minute + time.Second)
	res := limiter.CheckAndConsume("user-1", policy)
	assert.True(t, res.Allowed)
}

func TestRetryAfterRoundsUpToWholeMinutes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewWithClock(func() time.Time { return now })
	policy := Policy{MaxCalls: 1, Window: 5 * time.Minute}

	assert.True(t, limiter.CheckAndConsume("user-1", policy).Allowed)

	now = now.Add(90 * time.Second) // 3m30s left in the window
	res := limiter.CheckAndConsume("user-1", policy)
	assert.False(t, res.Allowed)
	assert.Equal(t, 4*time.Minute, res.RetryAfter)

	now = now.Add(90 * time.Second) // exactly 2m left
	res = limiter.CheckAndConsume("user-1", policy)
	assert.False(t, res.Allowed)
	assert.Equal(t, 2*time.Minute, res.RetryAfter)
}

func TestUsersAreIsolated(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewWithClock(func() time.Time { return now })
	policy := Policy{MaxCalls: 1, Window: 5 * time.Minute}

	assert.True(t, limiter.CheckAndConsume("user-1", policy).Allowed)
	assert.False(t, limiter.CheckAndConsume("user-1", policy).Allowed)
	assert.True(t, limiter.CheckAndConsume("user-2", policy).Allowed)
}

func TestPolicyAppliedPerCall(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewWithClock(func() time.Time { return now })

	// A tighter policy on a later call takes effect immediately.
	loose := Policy{MaxCalls: 5, Window: 5 * time.Minute}
	tight := Policy{MaxCalls: 2, Window: 5 * time.Minute}

	assert.True(t, limiter.CheckAndConsume("user-1", loose).Allowed)
	assert.True(t, limiter.CheckAndConsume("user-1", loose).Allowed)
	assert.False(t, limiter.CheckAndConsume("user-1", tight).Allowed)
}
