// Package generate wraps calls to the external generation service with
// bounded retries, rate-limit cooldowns, and structured-output decoding.
package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"rostergen/internal/progress"
)

// Request is one structured-output generation call.
type Request struct {
	// Label identifies the request in progress updates and errors,
	// e.g. "district 1 structural slice 2".
	Label string
	// System is the optional system instruction.
	System string
	// Prompt is the free-text instruction body.
	Prompt string
	// Schema describes the exact JSON shape expected back.
	Schema *genai.Schema
}

// Generator performs a single generation call and returns the raw JSON
// payload. Implementations classify quota failures as *RateLimitError and
// empty output as ErrEmptyResponse; everything else is transient.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// Backoff holds the two delay strategies of the retry loop.
type Backoff struct {
	// Transient is the short fixed delay after an empty, malformed, or
	// schema-invalid response.
	Transient time.Duration
	// RateLimit is the extended cooldown after a quota rejection.
	RateLimit time.Duration
}

// DefaultBackoff mirrors the cadence the scripts settled on: a couple of
// seconds for flaky output, tens of seconds for quota errors.
func DefaultBackoff() Backoff {
	return Backoff{Transient: 2 * time.Second, RateLimit: 30 * time.Second}
}

// Sleeper pauses for d or returns early with the context's error.
// Injectable so tests never actually sleep.
type Sleeper func(ctx context.Context, d time.Duration) error

func realSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Runner drives a Generator through bounded, validated attempts.
type Runner struct {
	Gen      Generator
	Attempts int
	Backoff  Backoff
	Reporter progress.Reporter
	Sleep    Sleeper // nil means real sleep
}

// NewRunner returns a Runner with default backoff.
func NewRunner(gen Generator, attempts int, rep progress.Reporter) *Runner {
	return &Runner{Gen: gen, Attempts: attempts, Backoff: DefaultBackoff(), Reporter: rep}
}

// Do performs up to Attempts calls for req, passing each non-empty
// response through decode. decode parses and validates the payload;
// its failure is indistinguishable from a malformed response and takes
// the same transient-retry path. On success Do returns nil after the
// first attempt whose payload decode accepted. Once attempts run out it
// returns an *ExhaustedError naming the request label.
func (r *Runner) Do(ctx context.Context, req Request, decode func(raw []byte) error) error {
	if r.Attempts < 1 {
		return fmt.Errorf("%s: attempt count %d must be >= 1", req.Label, r.Attempts)
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = realSleep
	}

	var lastErr error
	for attempt := 1; attempt <= r.Attempts; attempt++ {
		r.Reporter.Attempt(req.Label, attempt, r.Attempts)

		raw, err := r.Gen.Generate(ctx, req)
		if err == nil && len(bytes.TrimSpace(raw)) == 0 {
			err = ErrEmptyResponse
		}
		if err == nil {
			err = decode(raw)
			if err == nil {
				return nil
			}
			err = fmt.Errorf("invalid payload: %w", err)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", req.Label, ctx.Err())
		}
		lastErr = err

		if attempt == r.Attempts {
			break
		}
		if IsRateLimit(err) {
			if err := r.cooldown(ctx, req.Label, sleep); err != nil {
				return fmt.Errorf("%s: %w", req.Label, err)
			}
		} else if err := sleep(ctx, r.Backoff.Transient); err != nil {
			return fmt.Errorf("%s: %w", req.Label, err)
		}
	}

	return &ExhaustedError{Label: req.Label, Attempts: r.Attempts, Last: lastErr}
}

// cooldown waits out the rate-limit window, emitting a countdown once per
// second so the wait is visible.
func (r *Runner) cooldown(ctx context.Context, label string, sleep Sleeper) error {
	remaining := r.Backoff.RateLimit
	for remaining > 0 {
		r.Reporter.Cooldown(label, remaining)
		step := time.Second
		if remaining < step {
			step = remaining
		}
		if err := sleep(ctx, step); err != nil {
			return err
		}
		remaining -= step
	}
	return nil
}

// IsExhausted reports whether err is a bounded-attempts exhaustion.
func IsExhausted(err error) bool {
	var ex *ExhaustedError
	return errors.As(err, &ex)
}
