// Package budget enforces per-destination call-rate quotas before a request
// is sent.
//
// A Budget is an ordered list of policies. Each policy pairs a matcher
// (method + path prefix) with a limiter; the first policy matching a call
// governs it and a call matching no policy is unthrottled. One budget is
// shared process-wide by every extraction stream reusing the same client, so
// acquisition is safe under concurrent callers racing for slots.
//
// Limiters:
//
//   - NewCallRate(n, window): at most n calls per window, token bucket,
//     bursts up to the quota
//   - NewFixedInterval(d): consecutive calls at least d apart, no bursts
//
// Calls served from a local response cache carry ServedFromCache on their
// descriptor and pass through without consuming quota.
//
// Usage:
//
//	b := budget.New(
//	    budget.Policy{
//	        Matcher: budget.RequestMatcher{PathPrefix: "/api/2.0/export"},
//	        Limiter: budget.NewCallRate(60, time.Hour),
//	    },
//	    budget.Policy{
//	        Matcher: budget.RequestMatcher{},
//	        Limiter: budget.NewFixedInterval(time.Second),
//	    },
//	)
package budget
