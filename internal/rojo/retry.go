package rojo

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Outcome tags the result of one invocation attempt.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeTransient         // worth another attempt
	OutcomeFatal             // retrying can't help
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeTransient:
		return "transient"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Attempt is the tagged result of one invocation.
type Attempt struct {
	Outcome  Outcome
	ExitCode int
	Timeout  bool
	Err      error
}

// RetryOptions bound InvokeWithRetry.
type RetryOptions struct {
	MaxAttempts int           // default: 2
	Timeout     time.Duration // per attempt; default: no timeout

	// Wait returns how long to wait before retry n (0-based).
	// The default is exponential backoff with jitter.
	Wait func(retry int) time.Duration

	// BeforeRetry runs before every retry. An error makes the result fatal.
	BeforeRetry func(retry int) error
}

func (o *RetryOptions) maxAttempts() int {
	if o.MaxAttempts <= 0 {
		return 2
	}
	return o.MaxAttempts
}

func (o *RetryOptions) wait(retry int) time.Duration {
	if o.Wait == nil {
		return retryWaitDuration(retry)
	}
	return o.Wait(retry)
}

// InvokeWithRetry calls attempt until it succeeds, fails fatally or runs out
// of attempts, and returns the last attempt with the number of attempts made.
// Each call runs under its own timeout; an expired timeout is fatal.
func InvokeWithRetry(ctx context.Context, opts *RetryOptions, attempt func(ctx context.Context) Attempt) (Attempt, int) {
	var last Attempt
	maxAttempts := opts.maxAttempts()

	for n := 1; ; n++ {
		last = invokeOnce(ctx, opts.Timeout, attempt)
		if last.Outcome != OutcomeTransient || n >= maxAttempts {
			return last, n
		}

		retry := n - 1
		timer := time.NewTimer(opts.wait(retry))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return Attempt{Outcome: OutcomeFatal, ExitCode: last.ExitCode, Err: ctx.Err()}, n
		}

		if opts.BeforeRetry != nil {
			if err := opts.BeforeRetry(retry); err != nil {
				return Attempt{Outcome: OutcomeFatal, ExitCode: last.ExitCode, Err: err}, n
			}
		}
	}
}

func invokeOnce(ctx context.Context, timeout time.Duration, attempt func(ctx context.Context) Attempt) Attempt {
	attemptCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	a := attempt(attemptCtx)
	if a.Outcome != OutcomeSucceeded && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		a.Outcome = OutcomeFatal
		a.Timeout = true
		if a.Err == nil || errors.Is(a.Err, context.DeadlineExceeded) {
			a.Err = ErrTimeout
		}
	}
	return a
}

// retryWaitDuration returns the wait before retry n (0-based): exponential
// backoff from 250ms by a factor of 1.5 that stops growing after the eighth
// retry, plus or minus up to 50% jitter.
func retryWaitDuration(retry int) time.Duration {
	n := min(retry, 8)
	duration := int(250 * time.Millisecond)

	for range n {
		duration = duration / 2 * 3
	}

	jitter := rand.IntN(duration) - duration/2
	duration += jitter

	return time.Duration(duration)
}
