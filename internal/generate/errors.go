package generate

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse marks a call that returned no usable content (blocked
// prompt, empty candidate list, whitespace-only text). It is transient:
// the caller retries after a short delay.
var ErrEmptyResponse = errors.New("generator returned no content")

// RateLimitError marks a call rejected for quota reasons. The retry loop
// answers it with an extended cooldown instead of the short transient
// delay; it still consumes one bounded attempt.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// IsRateLimit reports whether err carries a rate-limit condition.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// ExhaustedError is returned once every bounded attempt for a labeled
// request has failed. It is fatal for the calling phase; whether that
// aborts the whole district or only one school is the caller's decision.
type ExhaustedError struct {
	Label    string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generation exhausted for %s after %d attempts: %v", e.Label, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }
