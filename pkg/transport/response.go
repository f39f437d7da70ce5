package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
)

// Response is a fully-read HTTP response. The body is kept as raw bytes and
// decoded to text or JSON only on demand, so classification of large streamed
// payloads does not pay the decoding cost unless something asks for it.
type Response struct {
	StatusCode int
	Header     http.Header
	body       []byte

	jsonOnce sync.Once
	jsonVal  any
	jsonErr  error
}

// NewResponse builds a Response from already-read parts. Used by tests and by
// cache layers that reconstruct responses from stored bytes.
func NewResponse(statusCode int, header http.Header, body []byte) *Response {
	if header == nil {
		header = http.Header{}
	}
	return &Response{StatusCode: statusCode, Header: header, body: body}
}

// ReadResponse drains an *http.Response body into a Response and closes it.
func ReadResponse(res *http.Response) (*Response, error) {
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: res.StatusCode, Header: res.Header, body: body}, nil
}

// Body returns the raw response bytes.
func (r *Response) Body() []byte {
	return r.body
}

// Text returns the body decoded as a string.
func (r *Response) Text() string {
	return string(r.body)
}

// JSON decodes the body as JSON once and memoizes the result.
func (r *Response) JSON() (any, error) {
	r.jsonOnce.Do(func() {
		r.jsonErr = json.Unmarshal(r.body, &r.jsonVal)
	})
	return r.jsonVal, r.jsonErr
}

// Success reports whether the status code is in the 2xx range.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
