package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks a failure to reach a remote backend such as Redis.
var ErrNetwork = errors.New("network error")

// retryAttempts bounds how often RetryWithBackoff calls its function.
const retryAttempts = 3

// retryDelay is the wait after the first failed attempt. Each later wait
// is twice the previous one.
var retryDelay = time.Second

// transientError flags an error worth another attempt.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsRetryable reports whether err, or anything it wraps, came from Retryable.
func IsRetryable(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// RetryWithBackoff calls fn until it succeeds, returns an error not marked
// by Retryable, or has been tried retryAttempts times. Cancelling ctx ends
// the wait between attempts with ctx.Err().
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	wait := retryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}
