package screener

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Do(t *testing.T) {
	transient := fmt.Errorf("%w: connection reset", ErrFetchTransient)
	permanent := fmt.Errorf("%w: symbol not found", ErrFetchPermanent)

	tests := []struct {
		name         string
		policy       RetryPolicy
		failures     []error
		wantErr      error
		wantAttempts int
	}{
		{
			name:         "succeeds first try",
			policy:       RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: IsRetryable},
			failures:     nil,
			wantAttempts: 1,
		},
		{
			name:         "recovers from transient failures",
			policy:       RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: IsRetryable},
			failures:     []error{transient, transient},
			wantAttempts: 3,
		},
		{
			name:         "gives up after max attempts",
			policy:       RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: IsRetryable},
			failures:     []error{transient, transient, transient},
			wantErr:      ErrFetchTransient,
			wantAttempts: 3,
		},
		{
			name:         "permanent error stops immediately",
			policy:       RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: IsRetryable},
			failures:     []error{permanent},
			wantErr:      ErrFetchPermanent,
			wantAttempts: 1,
		},
		{
			name:         "zero attempts still runs once",
			policy:       RetryPolicy{MaxAttempts: 0, BaseDelay: time.Millisecond, Retryable: IsRetryable},
			failures:     []error{transient},
			wantErr:      ErrFetchTransient,
			wantAttempts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := tt.policy.Do(context.Background(), func() error {
				attempts++
				if attempts <= len(tt.failures) {
					return tt.failures[attempts-1]
				}
				return nil
			})

			assert.Equal(t, tt.wantAttempts, attempts)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRetryPolicy_DoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond, Retryable: IsRetryable}

	attempts := 0
	err := policy.Do(ctx, func() error {
		attempts++
		cancel()
		return fmt.Errorf("%w: flaky", ErrFetchTransient)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts, "no attempt after the context is cancelled")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("%w: 503", ErrFetchTransient)))
	assert.False(t, IsRetryable(fmt.Errorf("%w: 404", ErrFetchPermanent)))
	assert.False(t, IsRetryable(ErrInsufficientHistory))
	assert.False(t, IsRetryable(errors.New("plain error")))
}
