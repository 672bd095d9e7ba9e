package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNetwork marks transport failures and 5xx responses, both when
// fetching record URLs and when reaching Redis.
var ErrNetwork = errors.New("network error")

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient returns a network error that [Backoff.Do] retries. The message
// is formatted like fmt.Errorf and the result wraps [ErrNetwork].
func Transient(format string, args ...any) error {
	return &transientError{fmt.Errorf("%w: "+format, append([]any{ErrNetwork}, args...)...)}
}

// IsTransient reports whether err was built by [Transient].
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// Backoff retries transient failures with a doubling delay.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBackoff waits 1s and then 2s between three attempts.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Do calls fn until it succeeds, fails with a non-transient error or runs
// out of attempts. It returns ctx.Err() if ctx ends while waiting.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsTransient(err) || attempt >= b.Attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}
