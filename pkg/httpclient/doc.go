// Package httpclient executes logical HTTP requests for data-extraction
// connectors: one Send call covers request construction, call-rate budgeting,
// transport, outcome classification, and a bounded sequential retry loop.
//
// The executor composes three pluggable policies:
//
//   - an ErrorHandler (pkg/handler) classifying each attempt's outcome into
//     succeed, retry, ignore, or fail
//   - an ordered chain of backoff strategies (pkg/backoff) proposing retry
//     delays, with an exponential factor*2^(attempt-1) fallback
//   - a call-rate Budget (pkg/budget) acquired before every network attempt
//
// Retry bounds resolve once per Send with fixed precedence: the error
// handler's overrides, then the first strategy exposing one, then the client
// defaults (5 retries, 600s, factor 5). Attempts never exceed max_retries+1
// and the loop stops rather than start a sleep that would overrun the
// wall-clock budget.
//
// A Client is safe for concurrent use: retry state lives on the stack of each
// Send call, and the shared budget serializes quota acquisition.
//
// Usage:
//
//	client := httpclient.New("mixpanel",
//	    httpclient.WithAuthenticator(&auth.BasicAuth{Username: secret, Password: ""}),
//	    httpclient.WithBackoffStrategies(backoff.NewRetryAfter()),
//	    httpclient.WithBudget(budget.New(budget.Policy{
//	        Matcher: budget.RequestMatcher{PathPrefix: "/api/2.0/export"},
//	        Limiter: budget.NewCallRate(60, time.Hour),
//	    })),
//	)
//
//	_, resp, err := client.Send(ctx, httpclient.Request{
//	    Method: "GET",
//	    URL:    "https://mixpanel.com/api/2.0/export",
//	    Params: map[string]string{"from_date": "2024-01-01"},
//	})
package httpclient
