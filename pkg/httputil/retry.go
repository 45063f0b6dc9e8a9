package httputil

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// maxDelay caps the wait between two attempts.
const maxDelay = 10 * time.Second

// RetryableError marks a failure worth another attempt, such as a refused
// connection while the guide server is still starting.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn until it succeeds, fails with an error not marked
// [RetryableError], or has been called attempts times. The wait starts at
// delay and doubles up to ten seconds. Cancelling ctx stops the wait.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for n := 1; ; n++ {
		if err = fn(); err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) || n >= attempts {
			return err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(2*delay, maxDelay)
	}
}

// RetryableStatus reports whether an acknowledgment may be resent after a
// response with this status.
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
