// Package handler classifies HTTP outcomes for the request executor.
//
// An ErrorHandler inspects either a response or a transport-level error and
// returns a resolution: succeed, retry, ignore, or fail, tagged with a
// failure kind (config, transient, system). The executor dispatches its retry
// loop on that resolution alone, so swapping the handler changes retry policy
// without touching the loop.
//
// StatusHandler is the default implementation. Its table:
//
//   - 2xx: succeed
//   - 429, 408, 5xx: retry, transient
//   - 400, 401, 403, 422: fail, config (bad request shape or credentials)
//   - other 4xx: fail, system
//   - connection/timeout/DNS transport errors: retry, transient
//   - anything unrecognized: fail, system
//
// Per-code behavior is overridable:
//
//	h := handler.NewStatusHandler().
//	    WithStatus(404, errors.Ignore("object gone, skipping"))
//
// JSONMessageParser extracts a human-readable message from structured error
// bodies by probing common keys (message, error, error_message, ...) and
// falls back to the raw body text, bounded in size.
package handler
