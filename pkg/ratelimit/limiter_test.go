package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"skycache/pkg/config"
)

func TestTokenBucketBurst(t *testing.T) {
	tb := NewTokenBucket(3, time.Hour)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.limiter.Allow(), "token %d should be available", i+1)
	}
	assert.False(t, tb.limiter.Allow(), "bucket should be exhausted")
}

func TestTokenBucketRefill(t *testing.T) {
	tb := NewTokenBucket(1, 50*time.Millisecond)
	require.NoError(t, tb.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, tb.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestTokenBucketWaitCancelled(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour)
	require.NoError(t, tb.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, tb.Wait(ctx))
}

func TestFromSettings(t *testing.T) {
	tb := FromSettings(config.RateLimitConfig{RequestsPerMinute: 60, BurstSize: 2})
	assert.True(t, tb.limiter.Allow())
	assert.True(t, tb.limiter.Allow())
	assert.False(t, tb.limiter.Allow())

	unlimited := FromSettings(config.RateLimitConfig{BurstSize: 1})
	for i := 0; i < 10; i++ {
		assert.NoError(t, unlimited.Wait(context.Background()))
	}
}

func TestUnlimited(t *testing.T) {
	var l Limiter = Unlimited{}
	assert.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}
