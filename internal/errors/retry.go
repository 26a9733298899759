package errors

import (
	"context"
	"errors"
	"time"
)

// Policy describes how retryable failures are re-attempted.
type Policy struct {
	MaxRetries int
	Initial    time.Duration
	Max        time.Duration
}

// DeliveryPolicy is tuned for outbound Telegram sends: hiccups there resolve
// within seconds, and a reminder arriving late beats one not arriving at all.
var DeliveryPolicy = Policy{
	MaxRetries: 3,
	Initial:    100 * time.Millisecond,
	Max:        5 * time.Second,
}

// WithRetry runs fn under the delivery policy. Only errors marked retryable in
// the AppError taxonomy are re-attempted; everything else returns immediately.
func WithRetry(ctx context.Context, fn func() error) error {
	return DeliveryPolicy.Run(ctx, fn)
}

// Run executes fn, backing off exponentially between retryable failures. The
// wait honors ctx so shutdown is never blocked on a sleeping retry.
func (p Policy) Run(ctx context.Context, fn func() error) error {
	if fn == nil {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	backoff := p.Initial
	var err error
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) || attempt == p.MaxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > p.Max {
			backoff = p.Max
		}
	}
}

// IsRetryable reports whether err carries the retryable marker. Plain errors
// are conservative: never retried.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Retryable
	}

	return false
}
