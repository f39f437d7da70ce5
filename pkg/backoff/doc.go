// Package backoff provides composable retry-delay strategies for the request
// executor.
//
// A Strategy inspects the outcome of one attempt (the response or the
// transport error) and either proposes a delay before the next attempt or
// declines. Strategies are configured as an ordered list; the executor asks
// each in turn and the first non-declining answer wins, so compositions like
// "header-driven delay, else exponential" need no special cases.
//
// Available strategies:
//
//   - RetryAfter: honors the standard Retry-After header (seconds or
//     HTTP-date form), the default for APIs that announce their own cooldown
//   - Exponential: factor * 2^(attempt-1) seconds with optional jitter
//   - Constant: fixed delay
//   - None: never answers, used only to carry limit overrides
//
// A strategy may also override the executor's retry bounds (max retries, max
// time, exponential factor) through its Limits value; nil fields leave the
// executor defaults in place.
//
// Usage:
//
//	strategies := []backoff.Strategy{
//	    backoff.NewRetryAfter(),
//	    &backoff.Exponential{Factor: 5, JitterFactor: 0.1},
//	}
package backoff
