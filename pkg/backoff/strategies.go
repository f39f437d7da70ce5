package backoff

import (
	"math"
	"math/rand"
	"time"

	"connkit/pkg/transport"
)

// Constant always proposes the same delay.
type Constant struct {
	NoLimits
	Delay time.Duration
}

func (c *Constant) Next(_ *transport.Response, _ error, _ int) (time.Duration, bool) {
	return c.Delay, true
}

// Exponential proposes factor * 2^(attempt-1) seconds with optional jitter,
// the same curve the executor falls back to when no strategy answers.
// Its optional limits let one strategy both shape the curve and bound the
// whole retry sequence.
type Exponential struct {
	// Factor scales the curve; 0 means the executor default.
	Factor float64
	// MaxDelay caps a single sleep. Zero means uncapped.
	MaxDelay time.Duration
	// JitterFactor in [0,1] spreads concurrent retries apart. Zero disables.
	JitterFactor float64

	// MaxRetries and MaxTime, when non-nil, override the executor defaults
	// for the whole retry sequence.
	MaxRetries *int
	MaxTime    *time.Duration
}

func (e *Exponential) Next(_ *transport.Response, _ error, attempt int) (time.Duration, bool) {
	if attempt <= 0 {
		return 0, true
	}

	factor := e.Factor
	if factor <= 0 {
		factor = 1
	}
	delay := factor * math.Pow(2, float64(attempt-1)) * float64(time.Second)

	if e.MaxDelay > 0 && delay > float64(e.MaxDelay) {
		delay = float64(e.MaxDelay)
	}
	if e.JitterFactor > 0 {
		jitter := delay * e.JitterFactor
		delay += (rand.Float64() * 2 * jitter) - jitter
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay), true
}

func (e *Exponential) Limits() Limits {
	limits := Limits{MaxRetries: e.MaxRetries, MaxTime: e.MaxTime}
	if e.Factor > 0 {
		f := e.Factor
		limits.Factor = &f
	}
	return limits
}

// None never proposes a delay. Useful as a placeholder when a connector wants
// only the executor's exponential fallback but needs to override limits.
type None struct {
	MaxRetries *int
	MaxTime    *time.Duration
}

func (n *None) Next(_ *transport.Response, _ error, _ int) (time.Duration, bool) {
	return 0, false
}

func (n *None) Limits() Limits {
	return Limits{MaxRetries: n.MaxRetries, MaxTime: n.MaxTime}
}
