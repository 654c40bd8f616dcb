package screener

import (
	"context"
	"time"
)

// RetryPolicy is a declarative retry rule the orchestrator applies to every
// acquisition call: bounded attempts, exponential backoff, and a predicate
// deciding which errors are worth another try.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Retryable   func(error) bool
}

// DefaultRetryPolicy retries transient fetch failures up to three times with
// a doubling delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Retryable:   IsRetryable,
	}
}

// Do runs op, retrying per the policy. It returns the last error when every
// attempt fails, and stops early on context cancellation or on an error the
// predicate rejects.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := p.BaseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
