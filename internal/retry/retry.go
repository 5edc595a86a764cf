// Package retry provides a named exponential-backoff policy for calls to flaky upstreams.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = time.Second
	DefaultMultiplier  = 2.0
)

// Policy describes how often and how patiently an operation is retried.
// Only errors marked with Retryable are retried; anything else is terminal.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultPolicy waits 1s, 2s, 4s, 8s between five attempts
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Multiplier:  DefaultMultiplier,
	}
}

// ExhaustedError is returned when every attempt failed with a retryable error
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err was marked with Retryable
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	return p
}

// Delays lists the waits between consecutive attempts
func (p Policy) Delays() []time.Duration {
	p = p.normalized()

	delays := make([]time.Duration, 0, p.MaxAttempts-1)
	next := p.backoff()
	for {
		d, stop := next.Next()
		if stop {
			return delays
		}
		delays = append(delays, d)
	}
}

// MaxWait is the total time spent sleeping when every attempt fails
func (p Policy) MaxWait() time.Duration {
	var total time.Duration
	for _, d := range p.Delays() {
		total += d
	}
	return total
}

func (p Policy) backoff() goretry.Backoff {
	delay := float64(p.BaseDelay)
	b := goretry.BackoffFunc(func() (time.Duration, bool) {
		d := time.Duration(delay)
		delay *= p.Multiplier
		return d, false
	})
	return goretry.WithMaxRetries(uint64(p.MaxAttempts-1), b)
}

// Do runs fn until it succeeds, returns a terminal error, the context ends,
// or the attempt budget is spent. The attempt number passed to fn starts at 1.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	p = p.normalized()

	attempts := 0
	err := goretry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempts++
		err := fn(ctx, attempts)

		var re *retryableError
		if errors.As(err, &re) {
			return goretry.RetryableError(re)
		}
		return err
	})

	var re *retryableError
	if errors.As(err, &re) {
		return &ExhaustedError{Attempts: attempts, Err: re.err}
	}
	return err
}
