package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_SweepsIdleBuckets(t *testing.T) {
	m, ok := NewMemoryLimiter(testLogger()).(*MemoryLimiter)
	require.True(t, ok)
	ctx := context.Background()

	// A chat that stopped talking well over bucketMaxAge ago.
	stale := time.Now().Add(-2 * bucketMaxAge)
	m.mu.Lock()
	m.buckets["chat:1"] = &bucket{requests: []time.Time{stale}}
	m.lastSweep = stale
	m.mu.Unlock()

	_, err := m.Check(ctx, "chat:2", 5, time.Minute)
	require.NoError(t, err)

	m.mu.Lock()
	_, staleKept := m.buckets["chat:1"]
	_, activeKept := m.buckets["chat:2"]
	m.mu.Unlock()

	assert.False(t, staleKept, "idle bucket survived the sweep")
	assert.True(t, activeKept, "active bucket swept away")
}

func TestMemoryLimiter_SweepIsRateLimited(t *testing.T) {
	m, ok := NewMemoryLimiter(testLogger()).(*MemoryLimiter)
	require.True(t, ok)
	ctx := context.Background()

	_, err := m.Check(ctx, "chat:1", 5, time.Minute)
	require.NoError(t, err)

	m.mu.Lock()
	firstSweep := m.lastSweep
	m.mu.Unlock()

	_, err = m.Check(ctx, "chat:2", 5, time.Minute)
	require.NoError(t, err)

	m.mu.Lock()
	secondSweep := m.lastSweep
	m.mu.Unlock()

	assert.Equal(t, firstSweep, secondSweep, "sweep ran again within the interval")
}

func TestResultRetryAfter(t *testing.T) {
	now := time.Now()

	blocked := &Result{Allowed: false, ResetAt: now.Add(30 * time.Second)}
	assert.Equal(t, 30*time.Second, blocked.RetryAfter(now))

	allowed := &Result{Allowed: true, ResetAt: now.Add(30 * time.Second)}
	assert.Zero(t, allowed.RetryAfter(now))

	expired := &Result{Allowed: false, ResetAt: now.Add(-time.Second)}
	assert.Zero(t, expired.RetryAfter(now))
}
