package backoff

import (
	"net/http"
	"strconv"
	"time"

	"connkit/pkg/transport"
)

// RetryAfter is the default strategy: it honors the standard Retry-After
// response header, in both delta-seconds and HTTP-date forms, and otherwise
// defers to whatever comes next in the strategy chain.
type RetryAfter struct {
	NoLimits

	// Header overrides the header name probed on the response. Defaults to
	// "Retry-After"; some APIs use X-RateLimit-Reset style variants.
	Header string

	// Max caps the delay a server may request. Zero means uncapped.
	Max time.Duration

	// now is swapped out by tests for HTTP-date parsing.
	now func() time.Time
}

// NewRetryAfter returns a RetryAfter strategy probing the standard header.
func NewRetryAfter() *RetryAfter {
	return &RetryAfter{}
}

func (s *RetryAfter) Next(resp *transport.Response, _ error, _ int) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}

	header := s.Header
	if header == "" {
		header = "Retry-After"
	}
	value := resp.Header.Get(header)
	if value == "" {
		return 0, false
	}

	delay, ok := parseRetryAfter(value, s.clock())
	if !ok {
		return 0, false
	}
	if delay < 0 {
		delay = 0
	}
	if s.Max > 0 && delay > s.Max {
		delay = s.Max
	}
	return delay, true
}

func (s *RetryAfter) clock() func() time.Time {
	if s.now != nil {
		return s.now
	}
	return time.Now
}

// parseRetryAfter accepts the two standard header forms: a non-negative
// number of seconds, or an HTTP date.
func parseRetryAfter(value string, now func() time.Time) (time.Duration, bool) {
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(seconds * float64(time.Second)), true
	}
	if at, err := http.ParseTime(value); err == nil {
		return at.Sub(now()), true
	}
	return 0, false
}
