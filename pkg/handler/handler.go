package handler

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"time"

	"connkit/pkg/errors"
	"connkit/pkg/transport"
)

// ErrorHandler classifies the outcome of one attempt into a resolution the
// executor dispatches on. Exactly one of resp or err is set.
type ErrorHandler interface {
	Interpret(resp *transport.Response, err error) errors.Resolution

	// Limits returns the handler's retry-bound overrides. They take
	// precedence over any backoff strategy's. A zero Limits defers.
	Limits() Limits
}

// Limits carries the handler's optional retry bounds. Nil fields defer to the
// backoff strategies and then to the executor defaults.
type Limits struct {
	MaxRetries *int
	MaxTime    *time.Duration
}

// StatusHandler is the default status-code-driven ErrorHandler: 2xx succeeds,
// 429 and 5xx retry as transient, most other 4xx fail, transport-level
// connection and timeout errors retry as transient, and anything unrecognized
// fails as a system error.
type StatusHandler struct {
	overrides map[int]errors.Resolution

	MaxRetries *int
	MaxTime    *time.Duration
}

// NewStatusHandler returns a StatusHandler with the default mapping.
func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

// WithStatus overrides the resolution for one status code and returns the
// handler for chaining.
func (h *StatusHandler) WithStatus(code int, res errors.Resolution) *StatusHandler {
	if h.overrides == nil {
		h.overrides = make(map[int]errors.Resolution)
	}
	h.overrides[code] = res
	return h
}

func (h *StatusHandler) Limits() Limits {
	return Limits{MaxRetries: h.MaxRetries, MaxTime: h.MaxTime}
}

func (h *StatusHandler) Interpret(resp *transport.Response, err error) errors.Resolution {
	if resp == nil {
		return h.interpretTransportError(err)
	}

	if res, ok := h.overrides[resp.StatusCode]; ok {
		return res
	}

	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return errors.Succeed()
	case code == 429:
		return errors.Retry(errors.FailureTransient, "rate limited by the API")
	case code >= 500:
		return errors.Retry(errors.FailureTransient, fmt.Sprintf("server error %d", code))
	case code == 408:
		return errors.Retry(errors.FailureTransient, "request timed out")
	case code == 400 || code == 401 || code == 403 || code == 422:
		return errors.Fail(errors.FailureConfig, fmt.Sprintf("the API rejected the request with status %d; check the connector configuration and credentials", code))
	case code >= 400 && code < 500:
		return errors.Fail(errors.FailureSystem, fmt.Sprintf("unexpected client error %d", code))
	default:
		// 1xx/3xx with no explicit override: no opinion, the executor's
		// unclassified path handles it.
		return errors.Resolution{}
	}
}

func (h *StatusHandler) interpretTransportError(err error) errors.Resolution {
	switch {
	case err == nil:
		return errors.Fail(errors.FailureSystem, "no response and no error")
	case stderrors.Is(err, context.Canceled):
		return errors.Fail(errors.FailureSystem, "request cancelled")
	case isTimeout(err), isConnectionError(err):
		return errors.Retry(errors.FailureTransient, fmt.Sprintf("network error: %v", err))
	default:
		return errors.Fail(errors.FailureSystem, fmt.Sprintf("unrecognized transport error: %v", err))
	}
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	if stderrors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return stderrors.As(err, &dnsErr)
}
