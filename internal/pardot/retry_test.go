// internal/pardot/retry_test.go
package pardot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func concurrentErr() error {
	return classify(codeConcurrentRequests, "Too many concurrent requests", "")
}

func TestAttemptExhaustsOnConcurrentRequests(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3}
	calls := 0
	err := p.Attempt(context.Background(), func(context.Context) error {
		calls++
		return concurrentErr()
	})
	assert.Equal(t, 3, calls)
	require.Error(t, err)
	assert.True(t, IsCode(err, codeConcurrentRequests))
}

func TestAttemptStopsOnSuccess(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3}
	calls := 0
	err := p.Attempt(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return concurrentErr()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestAttemptDoesNotRetryOtherFailures(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3}
	calls := 0
	err := p.Attempt(context.Background(), func(context.Context) error {
		calls++
		return classify(codeInvalidID, "Invalid ID", "")
	})
	assert.Equal(t, 1, calls)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestAttemptZeroMaxStillRunsOnce(t *testing.T) {
	p := RetryPolicy{}
	calls := 0
	err := p.Attempt(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestAttemptHonorsContextDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := RetryPolicy{MaxAttempts: 3, Delay: time.Minute}
	calls := 0
	err := p.Attempt(ctx, func(context.Context) error {
		calls++
		return concurrentErr()
	})
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}
