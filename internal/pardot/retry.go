// internal/pardot/retry.go
package pardot

import (
	"context"
	"time"
)

// RetryPolicy wraps a remote call with bounded retry on the platform's
// concurrent-request limit (code 66). Any other failure propagates unchanged
// on first occurrence. The policy is stateless across calls.
type RetryPolicy struct {
	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int
	// AttemptTimeout bounds each retried attempt. The initial attempt runs
	// under the caller's context alone.
	AttemptTimeout time.Duration
	// Delay is the pause before each retry.
	Delay time.Duration
}

// DefaultRetryPolicy matches the service defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, AttemptTimeout: 15 * time.Second, Delay: time.Second}
}

// Attempt invokes fn, retrying only while the failure carries the
// concurrent-request code and attempts remain.
func (p RetryPolicy) Attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	max := p.MaxAttempts
	if max < 1 {
		max = 1
	}
	var err error
	for attempt := 1; attempt <= max; attempt++ {
		if attempt == 1 {
			err = fn(ctx)
		} else {
			err = p.retriedAttempt(ctx, fn)
		}
		if err == nil || !IsCode(err, codeConcurrentRequests) {
			return err
		}
		if attempt == max {
			return err
		}
		if werr := p.wait(ctx); werr != nil {
			return werr
		}
	}
	return err
}

func (p RetryPolicy) retriedAttempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.AttemptTimeout <= 0 {
		return fn(ctx)
	}
	actx, cancel := context.WithTimeout(ctx, p.AttemptTimeout)
	defer cancel()
	return fn(actx)
}

func (p RetryPolicy) wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
