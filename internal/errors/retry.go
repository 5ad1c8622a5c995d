package errors

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy bounds exponential backoff for retryable AppErrors.
type RetryPolicy struct {
	// Retries is the number of extra attempts after the first.
	Retries    int
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// DefaultRetryPolicy is used by WithRetry.
var DefaultRetryPolicy = RetryPolicy{
	Retries:    3,
	Initial:    100 * time.Millisecond,
	Max:        5 * time.Second,
	Multiplier: 2,
}

// WithRetry runs fn under DefaultRetryPolicy.
func WithRetry(ctx context.Context, fn func() error) error {
	return DefaultRetryPolicy.Do(ctx, fn)
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// retries are spent. A RetryAfter on the error raises the wait to at least that.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	if fn == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	for attempt := 0; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = fn()
		if err == nil || !IsRetryable(err) || attempt >= p.Retries {
			return err
		}

		wait := p.backoff(attempt)
		var appErr *AppError
		if errors.As(err, &appErr) && appErr.RetryAfter > wait {
			wait = appErr.RetryAfter
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// backoff returns the wait after the given zero-based attempt.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.Initial
	for i := 0; i < attempt; i++ {
		d = time.Duration(float64(d) * p.Multiplier)
		if p.Max > 0 && d >= p.Max {
			return p.Max
		}
	}
	if p.Max > 0 && d > p.Max {
		return p.Max
	}
	return d
}

// IsRetryable reports whether err is an AppError marked retryable.
func IsRetryable(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr != nil && appErr.Retryable
}
