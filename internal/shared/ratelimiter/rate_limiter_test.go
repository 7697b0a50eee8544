package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BurstWithinLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	start := time.Now()
	for range 3 {
		require.NoError(t, rl.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "calls up to the limit do not wait")
}

func TestRateLimiter_WaitsWhenExhausted(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(2, 200*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, rl.Wait(ctx))
	require.NoError(t, rl.Wait(ctx))

	start := time.Now()
	require.NoError(t, rl.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestRateLimiter_ContextCanceled(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_Unlimited(t *testing.T) {
	t.Parallel()

	for _, rl := range []*RateLimiter{NewRateLimiter(0, time.Minute), NewPerMinute(-1)} {
		for range 100 {
			require.NoError(t, rl.Wait(context.Background()))
		}
	}
}
