package tagger

import (
	"errors"
	"math/rand/v2"
	"time"
)

// MaxRetries bounds the attempts made for one span.
const MaxRetries = 3

// backoffBase is the first retry delay; tests shrink it.
var backoffBase = time.Second

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * backoffBase
	if base > 30*backoffBase {
		base = 30 * backoffBase
	}
	jitter := time.Duration(rand.Int64N(int64(base)/2 + 1))
	return base + jitter
}
