// Package transport holds the thin seam between the request executor and the
// network: a fully-read Response type with lazy body decoding, and a Sender
// abstraction over http.Client so tests and cache layers can stand in for the
// real transport.
package transport

import (
	"net/http"
)

// Sender executes one fully-built HTTP request and returns either a drained
// Response or a transport-level error (connection refused, timeout, DNS
// failure). Per-call timeouts belong to the Sender, not to the retry layer.
type Sender interface {
	Send(req *http.Request) (*Response, error)
}

// HTTPSender adapts an *http.Client to the Sender interface.
type HTTPSender struct {
	Client *http.Client
}

// NewHTTPSender wraps the given client, defaulting to http.DefaultClient.
func NewHTTPSender(client *http.Client) *HTTPSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSender{Client: client}
}

func (s *HTTPSender) Send(req *http.Request) (*Response, error) {
	res, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	return ReadResponse(res)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(req *http.Request) (*Response, error)

func (f SenderFunc) Send(req *http.Request) (*Response, error) {
	return f(req)
}
