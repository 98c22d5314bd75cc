package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrJobFailed   = errors.New("job failed")
	ErrJobTimedOut = errors.New("job timed out")
)

// State is what a single status check reports about a remote job.
type State int

const (
	StatePending State = iota
	StateDone
	StateFailed
)

// PollConfig bounds a polling loop. Each tick is one status check, itself
// retried up to RequestAttempts times with linear backoff (RequestBackoff * n).
type PollConfig struct {
	Interval        time.Duration
	MaxAttempts     int
	RequestAttempts int
	RequestBackoff  time.Duration
	Sleep           Sleeper
}

// Poll repeatedly calls check until it reports StateDone or StateFailed.
// It returns the value from the final check and the number of ticks used.
// A reported failure wraps ErrJobFailed; an exhausted budget, RequestAttempts
// consecutive request errors in one tick, or ctx cancellation wrap ErrJobTimedOut.
func Poll[T any](ctx context.Context, cfg PollConfig, check func(ctx context.Context) (T, State, error)) (T, int, error) {
	var zero T
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	reqAttempts := cfg.RequestAttempts
	if reqAttempts < 1 {
		reqAttempts = 1
	}

	for tick := 1; tick <= maxAttempts; tick++ {
		if err := ctx.Err(); err != nil {
			return zero, tick - 1, fmt.Errorf("%w: %v", ErrJobTimedOut, err)
		}

		var (
			value T
			state State
			err   error
		)
		for req := 1; req <= reqAttempts; req++ {
			value, state, err = check(ctx)
			if err == nil {
				break
			}
			if req == reqAttempts {
				return zero, tick, fmt.Errorf("%w: %d status requests failed: %w", ErrJobTimedOut, reqAttempts, err)
			}
			if serr := sleep(ctx, cfg.RequestBackoff*time.Duration(req)); serr != nil {
				return zero, tick, fmt.Errorf("%w: %v", ErrJobTimedOut, serr)
			}
		}

		switch state {
		case StateDone:
			return value, tick, nil
		case StateFailed:
			return value, tick, ErrJobFailed
		}

		if tick == maxAttempts {
			break
		}
		if err := sleep(ctx, cfg.Interval); err != nil {
			return zero, tick, fmt.Errorf("%w: %v", ErrJobTimedOut, err)
		}
	}

	return zero, maxAttempts, fmt.Errorf("%w after %d attempts", ErrJobTimedOut, maxAttempts)
}
