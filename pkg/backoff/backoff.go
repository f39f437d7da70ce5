package backoff

import (
	"context"
	"time"

	"connkit/pkg/transport"
)

// Strategy maps one attempt's outcome to an optional delay before the next
// attempt. Exactly one of resp or err is set for a given outcome. Returning
// ok=false means the strategy has no opinion and the executor should consult
// the next configured strategy, falling back to exponential backoff when none
// answers.
type Strategy interface {
	// Next returns the delay before the next attempt. Attempt counts start
	// at 1 for the first network round trip.
	Next(resp *transport.Response, err error, attempt int) (delay time.Duration, ok bool)

	// Limits returns the retry limits this strategy wants to impose. A zero
	// Limits leaves every bound at the executor's default.
	Limits() Limits
}

// Limits carries the optional per-strategy retry bounds consulted by the
// executor. Nil fields mean "no override".
type Limits struct {
	MaxRetries *int
	MaxTime    *time.Duration
	Factor     *float64
}

// NoLimits can be embedded by strategies that never override retry bounds.
type NoLimits struct{}

func (NoLimits) Limits() Limits { return Limits{} }

// Wait sleeps for the given delay or returns early with the context's error
// if it is cancelled first.
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
