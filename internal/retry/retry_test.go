package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func fastPolicy() Policy {
	return Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, Multiplier: 2}
}

func TestDefaultPolicy_Schedule(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, p.Delays())
	assert.Equal(t, 15*time.Second, p.MaxWait())
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		if attempt <= 3 {
			return Retryable(errTransient)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
}

func TestDo_ExhaustsAttemptBudget(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return Retryable(errTransient)
	})

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 5, exhausted.Attempts)
	assert.Equal(t, 5, calls)
	assert.ErrorIs(t, err, errTransient)
}

func TestDo_TerminalErrorStopsImmediately(t *testing.T) {
	terminal := errors.New("not found")
	calls := 0
	err := fastPolicy().Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return terminal
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, terminal)

	var exhausted *ExhaustedError
	assert.False(t, errors.As(err, &exhausted))
}

func TestDo_StopsWhenContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := Policy{MaxAttempts: 5, BaseDelay: time.Hour, Multiplier: 2}

	calls := 0
	err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		calls++
		cancel()
		return Retryable(errTransient)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryable(t *testing.T) {
	assert.NoError(t, Retryable(nil))
	assert.True(t, IsRetryable(Retryable(errTransient)))
	assert.False(t, IsRetryable(errTransient))
	assert.ErrorIs(t, Retryable(errTransient), errTransient)
}

// Property: the delay schedule grows geometrically and has MaxAttempts-1 entries
func TestProperty_DelaysAreGeometric(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("each delay is the previous one times the multiplier", prop.ForAll(
		func(attempts int, baseMillis int, multiplier float64) bool {
			p := Policy{
				MaxAttempts: attempts,
				BaseDelay:   time.Duration(baseMillis) * time.Millisecond,
				Multiplier:  multiplier,
			}
			delays := p.Delays()
			if len(delays) != attempts-1 {
				return false
			}
			for i := 1; i < len(delays); i++ {
				want := float64(delays[i-1]) * multiplier
				if diff := float64(delays[i]) - want; diff > want*1e-9+4 || diff < -(want*1e-9+4) {
					return false
				}
			}
			return len(delays) == 0 || delays[0] == p.BaseDelay
		},
		gen.IntRange(1, 8),
		gen.IntRange(1, 2000),
		gen.Float64Range(1, 3),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: any failure pattern that succeeds within the budget is not reported as exhausted
func TestProperty_SuccessWithinBudgetIsReturned(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("n transient failures followed by success", prop.ForAll(
		func(failures int) bool {
			err := fastPolicy().Do(context.Background(), func(ctx context.Context, attempt int) error {
				if attempt <= failures {
					return Retryable(errTransient)
				}
				return nil
			})
			if failures < 5 {
				return err == nil
			}
			var exhausted *ExhaustedError
			return errors.As(err, &exhausted) && exhausted.Attempts == 5
		},
		gen.IntRange(0, 7),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
