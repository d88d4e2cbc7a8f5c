package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// MaxRetryDelay caps both the doubled backoff and a server's Retry-After.
const MaxRetryDelay = 30 * time.Second

// RetryableError marks a transient failure. After, when positive, is the
// wait the server asked for and replaces the backoff delay.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as retryable. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// retryAfter wraps err as retryable with the wait from a Retry-After header
// given in seconds. HTTP-date values are ignored.
func retryAfter(err error, h http.Header) error {
	re := &RetryableError{Err: err}
	if s, convErr := strconv.Atoi(h.Get("Retry-After")); convErr == nil && s > 0 {
		re.After = time.Duration(s) * time.Second
	}
	return re
}

// IsRetryable reports whether err is wrapped with [Retryable].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Retry calls fn up to attempts times. After a retryable failure it waits
// delay, doubling it each round up to MaxRetryDelay, unless the error
// carries its own wait. Other errors end the loop at once.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := delay
		if re.After > 0 {
			wait = re.After
		}
		t := time.NewTimer(min(wait, MaxRetryDelay))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, MaxRetryDelay)
	}
	return err
}
