package errors

import (
	"fmt"
	"strings"
)

// FailureKind classifies a fatal request error for alerting and user messaging.
type FailureKind string

const (
	// FailureConfig marks errors caused by how the request or connector is
	// configured. They are never retried.
	FailureConfig FailureKind = "config_error"
	// FailureTransient marks rate-limit, server-side, or network failures that
	// may succeed on a later attempt.
	FailureTransient FailureKind = "transient_error"
	// FailureSystem marks non-retryable failures that are not the caller's
	// configuration, including unrecognized outcomes.
	FailureSystem FailureKind = "system_error"
)

// ResponseAction tells the executor what to do with a classified outcome.
type ResponseAction string

const (
	ActionSucceed ResponseAction = "succeed"
	ActionFail    ResponseAction = "fail"
	ActionIgnore  ResponseAction = "ignore"
	ActionRetry   ResponseAction = "retry"
)

// Resolution is the result of classifying one response or transport error.
// A zero Resolution means "no explicit opinion": the executor treats a 2xx
// response as success and anything else as an unclassified system failure.
type Resolution struct {
	Action  ResponseAction
	Kind    FailureKind
	Message string
}

// Succeed returns a resolution that hands the response back to the caller.
func Succeed() Resolution {
	return Resolution{Action: ActionSucceed}
}

// Fail returns a terminal resolution with the given failure kind.
func Fail(kind FailureKind, message string) Resolution {
	return Resolution{Action: ActionFail, Kind: kind, Message: message}
}

// Ignore returns a resolution that logs the outcome and hands it back
// without raising.
func Ignore(message string) Resolution {
	return Resolution{Action: ActionIgnore, Message: message}
}

// Retry returns a resolution that schedules another attempt.
func Retry(kind FailureKind, message string) Resolution {
	return Resolution{Action: ActionRetry, Kind: kind, Message: message}
}

// RequestError is the terminal error raised by the request executor. It keeps
// an internal diagnostic (method, URL, status, parsed body excerpt) separate
// from the optional user-facing message so operational logs stay detailed
// while user surfaces stay concise.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int // 0 when the failure happened below the HTTP layer
	Kind       FailureKind
	// Internal is the full diagnostic message.
	Internal string
	// Message is the optional user-facing message. Empty means callers should
	// show Internal.
	Message string
	// Err is the underlying transport error, if any.
	Err error
}

// NewRequestError builds a RequestError from the request coordinates and an
// internal diagnostic. Callers set StatusCode and Message on the result when
// they apply.
func NewRequestError(method, url string, kind FailureKind, internal string, err error) *RequestError {
	return &RequestError{
		Method:   method,
		URL:      url,
		Kind:     kind,
		Internal: internal,
		Err:      err,
	}
}

func (e *RequestError) Error() string {
	if e.Internal != "" {
		return e.Internal
	}
	var b strings.Builder
	fmt.Fprintf(&b, "'%s' request to '%s' failed", e.Method, e.URL)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " with status code '%d'", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// UserMessage returns the user-facing message, falling back to the internal
// diagnostic when none was supplied.
func (e *RequestError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error()
}

// IsRetryable reports whether a failure kind is worth another attempt.
func IsRetryable(kind FailureKind) bool {
	return kind == FailureTransient
}
