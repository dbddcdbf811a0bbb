package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigHasSaneDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Positive(t, cfg.Requests)
	assert.Positive(t, cfg.Window)
	assert.NotEmpty(t, cfg.Strategy)
}

func TestMemoryLimiterSlidingWindowAllowsUpToLimit(t *testing.T) {
	l := newMemoryLimiter(normalize(Config{Requests: 5, Window: time.Second, Strategy: StrategySlidingWindow}))
	defer l.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		allowed, err := l.Allow(ctx, "key")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := l.Allow(ctx, "key")
	require.NoError(t, err)
	assert.False(t, allowed, "request beyond the limit should be denied")
}

func TestMemoryLimiterTokenBucketAllowsFirstRequest(t *testing.T) {
	l := newMemoryLimiter(normalize(Config{Requests: 60, Window: time.Second, Strategy: StrategyTokenBucket, BurstSize: 0}))
	defer l.Close()

	ctx := context.Background()
	allowed, err := l.Allow(ctx, "key")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryLimiterResetClearsKey(t *testing.T) {
	l := newMemoryLimiter(normalize(Config{Requests: 1, Window: time.Second}))
	defer l.Close()

	ctx := context.Background()
	allowed, _ := l.Allow(ctx, "key")
	require.True(t, allowed)

	allowed, _ = l.Allow(ctx, "key")
	require.False(t, allowed)

	require.NoError(t, l.Reset(ctx, "key"))
	allowed, err := l.Allow(ctx, "key")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryLimiterGetInfoReportsRemaining(t *testing.T) {
	l := newMemoryLimiter(normalize(Config{Requests: 3, Window: time.Second}))
	defer l.Close()

	ctx := context.Background()
	_, _ = l.Allow(ctx, "key")

	info, err := l.GetInfo(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, 2, info.Remaining)
}

func TestMemoryLimiterCloseRejectsFurtherCalls(t *testing.T) {
	l := newMemoryLimiter(normalize(Config{}))
	require.NoError(t, l.Close())

	_, err := l.Allow(context.Background(), "key")
	assert.ErrorIs(t, err, ErrLimiterClosed)
}
