package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rostergen/internal/progress"
)

// scriptedGen returns canned results in order, then fails the test if
// called again.
type scriptedGen struct {
	t       *testing.T
	results []func() ([]byte, error)
	calls   int
}

func (g *scriptedGen) Generate(ctx context.Context, req Request) ([]byte, error) {
	require.Less(g.t, g.calls, len(g.results), "unexpected extra generation call")
	res := g.results[g.calls]
	g.calls++
	return res()
}

func ok(payload string) func() ([]byte, error) {
	return func() ([]byte, error) { return []byte(payload), nil }
}

func fail(err error) func() ([]byte, error) {
	return func() ([]byte, error) { return nil, err }
}

// recordingSleeper records every requested delay without sleeping.
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func newRunner(t *testing.T, gen Generator, attempts int, sleep *recordingSleeper) *Runner {
	t.Helper()
	return &Runner{
		Gen:      gen,
		Attempts: attempts,
		Backoff:  Backoff{Transient: 2 * time.Second, RateLimit: 3 * time.Second},
		Reporter: progress.Nop{},
		Sleep:    sleep.sleep,
	}
}

func decodeJSON(out *map[string]string) func([]byte) error {
	return func(raw []byte) error { return json.Unmarshal(raw, out) }
}

func TestDoSucceedsOnThirdAttempt(t *testing.T) {
	gen := &scriptedGen{t: t, results: []func() ([]byte, error){
		ok(""),   // empty response, transient
		ok("  "), // whitespace only, transient
		ok(`{"status":"done"}`),
	}}
	sleep := &recordingSleeper{}
	r := newRunner(t, gen, 5, sleep)

	var got map[string]string
	err := r.Do(context.Background(), Request{Label: "slice 1"}, decodeJSON(&got))
	require.NoError(t, err)
	assert.Equal(t, "done", got["status"])
	assert.Equal(t, 3, gen.calls)
	// Two transient delays, no cooldown ticks.
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, sleep.delays)
}

func TestDoExhaustsAndNamesLabel(t *testing.T) {
	gen := &scriptedGen{t: t, results: []func() ([]byte, error){
		fail(errors.New("boom")),
		fail(errors.New("boom")),
		fail(errors.New("boom")),
	}}
	r := newRunner(t, gen, 3, &recordingSleeper{})

	err := r.Do(context.Background(), Request{Label: "district 2 structure slice 1"}, func([]byte) error {
		t.Fatal("decode must not run on failed attempts")
		return nil
	})
	require.Error(t, err)

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, "district 2 structure slice 1", ex.Label)
	assert.Equal(t, 3, ex.Attempts)
	assert.Contains(t, err.Error(), "district 2 structure slice 1")
	assert.True(t, IsExhausted(err))
}

func TestDoRateLimitCooldownCountsOneAttempt(t *testing.T) {
	gen := &scriptedGen{t: t, results: []func() ([]byte, error){
		fail(&RateLimitError{Err: errors.New("429")}),
		ok(`{"status":"done"}`),
	}}
	sleep := &recordingSleeper{}
	r := newRunner(t, gen, 2, sleep)

	var got map[string]string
	err := r.Do(context.Background(), Request{Label: "roster"}, decodeJSON(&got))
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
	// Cooldown is paid out second by second, never the transient delay.
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, sleep.delays)
}

func TestDoValidationFailureRetriesLikeTransient(t *testing.T) {
	gen := &scriptedGen{t: t, results: []func() ([]byte, error){
		ok(`{"count": "three"}`), // decode rejects
		ok(`{"count": "3"}`),
	}}
	sleep := &recordingSleeper{}
	r := newRunner(t, gen, 4, sleep)

	attempts := 0
	err := r.Do(context.Background(), Request{Label: "slice"}, func(raw []byte) error {
		attempts++
		if attempts == 1 {
			return fmt.Errorf("expected 3 schools, got 0")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []time.Duration{2 * time.Second}, sleep.delays)
}

func TestDoRejectsNonPositiveAttempts(t *testing.T) {
	r := newRunner(t, &scriptedGen{t: t}, 0, &recordingSleeper{})
	err := r.Do(context.Background(), Request{Label: "x"}, func([]byte) error { return nil })
	require.Error(t, err)
	assert.NotPanics(t, func() { _ = IsExhausted(err) })
	assert.False(t, IsExhausted(err))
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &scriptedGen{t: t, results: []func() ([]byte, error){
		func() ([]byte, error) {
			cancel()
			return nil, errors.New("interrupted")
		},
	}}
	r := newRunner(t, gen, 5, &recordingSleeper{})

	err := r.Do(ctx, Request{Label: "slice"}, func([]byte) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, gen.calls)
}

func TestRateLimitErrorUnwraps(t *testing.T) {
	base := errors.New("quota exceeded")
	err := fmt.Errorf("call failed: %w", &RateLimitError{Err: base})
	assert.True(t, IsRateLimit(err))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsRateLimit(errors.New("unrelated")))
}
