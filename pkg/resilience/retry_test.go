package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("connection refused")

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), "connect", fastRetry(5), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errFlaky
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}

func TestDoGivesUp(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), "connect", fastRetry(3), func(context.Context) (int, error) {
		calls++
		return 0, errFlaky
	})
	assert.ErrorIs(t, err, errFlaky)
	assert.ErrorContains(t, err, "all 3 attempts failed")
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 10, InitialDelay: time.Hour}
	calls := 0
	_, err := Do(ctx, "connect", cfg, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errFlaky
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoffBounded(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, JitterFraction: 0.1}.withDefaults()
	assert.InDelta(t, float64(100*time.Millisecond), float64(backoff(1, cfg)), float64(10*time.Millisecond))
	assert.InDelta(t, float64(200*time.Millisecond), float64(backoff(2, cfg)), float64(20*time.Millisecond))
	assert.Equal(t, time.Second, backoff(10, cfg))
}

func TestBackoffLongStreak(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Millisecond, MaxDelay: 30 * time.Second, JitterFraction: 0.2}
	for _, attempt := range []int{1, 40, 1000, 1 << 30} {
		d := Backoff(attempt, cfg)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 30*time.Second)
	}
	assert.Equal(t, 30*time.Second, Backoff(1000, RetryConfig{InitialDelay: time.Millisecond, MaxDelay: 30 * time.Second}))
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
