package budget

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Descriptor identifies one outgoing call for policy matching. ServedFromCache
// signals that the call was satisfied locally and must not consume quota.
type Descriptor struct {
	Method          string
	Path            string
	ServedFromCache bool
}

// Matcher selects which calls a policy governs.
type Matcher interface {
	Matches(d Descriptor) bool
}

// RequestMatcher matches on method and path prefix. Empty fields match
// anything, so the zero RequestMatcher matches every call.
type RequestMatcher struct {
	// Method matches case-insensitively; empty matches all methods.
	Method string
	// PathPrefix matches the start of the request path; empty matches all.
	PathPrefix string
}

func (m RequestMatcher) Matches(d Descriptor) bool {
	if m.Method != "" && !strings.EqualFold(m.Method, d.Method) {
		return false
	}
	if m.PathPrefix != "" && !strings.HasPrefix(d.Path, m.PathPrefix) {
		return false
	}
	return true
}

// Limiter admits calls under one policy's quota. Implementations must be safe
// for concurrent use.
type Limiter interface {
	// Acquire blocks until a slot is available or the context is done.
	Acquire(ctx context.Context) error
}

// Policy pairs a matcher with the limiter that governs matching calls.
type Policy struct {
	Matcher Matcher
	Limiter Limiter
}

// Budget gates outgoing calls against an ordered list of policies. The first
// policy whose matcher accepts a call governs it; a call no policy matches is
// unthrottled. One Budget is typically shared by every stream of a connector,
// so all methods are safe for concurrent use.
type Budget struct {
	policies []Policy
}

// New builds a budget from policies in matching-precedence order.
func New(policies ...Policy) *Budget {
	return &Budget{policies: policies}
}

// Acquire blocks until the first matching policy admits the call. Calls
// served from cache and calls matching no policy pass immediately.
func (b *Budget) Acquire(ctx context.Context, d Descriptor) error {
	if b == nil || d.ServedFromCache {
		return nil
	}
	for _, p := range b.policies {
		if p.Matcher == nil || p.Matcher.Matches(d) {
			return p.Limiter.Acquire(ctx)
		}
	}
	return nil
}

// callRate admits up to a fixed number of calls per window using a token
// bucket.
type callRate struct {
	limiter *rate.Limiter
}

// NewCallRate returns a limiter admitting calls per window, with bursts up to
// the full quota.
func NewCallRate(calls int, window time.Duration) Limiter {
	if calls <= 0 || window <= 0 {
		return unlimited{}
	}
	return &callRate{
		limiter: rate.NewLimiter(rate.Limit(float64(calls)/window.Seconds()), calls),
	}
}

func (c *callRate) Acquire(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

// intervalGate enforces a minimum gap between consecutive calls. Unlike a
// token bucket it never allows bursts.
type intervalGate struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewFixedInterval returns a limiter spacing calls at least interval apart.
func NewFixedInterval(interval time.Duration) Limiter {
	if interval <= 0 {
		return unlimited{}
	}
	return &intervalGate{interval: interval}
}

func (g *intervalGate) Acquire(ctx context.Context) error {
	g.mu.Lock()
	now := time.Now()
	wait := g.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	// Reserve this caller's slot before unlocking so concurrent callers
	// queue behind it.
	g.next = now.Add(wait + g.interval)
	g.mu.Unlock()

	if wait == 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type unlimited struct{}

func (unlimited) Acquire(context.Context) error { return nil }
