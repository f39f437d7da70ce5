package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"connkit/pkg/auth"
	"connkit/pkg/errors"
)

// bodyMethods are the HTTP methods that attach a request body.
var bodyMethods = map[string]bool{
	http.MethodGet:   true,
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

// Request describes one logical HTTP call. The body is either JSONBody or
// Data, never both; supplying both is a configuration error caught before any
// network activity.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Params  map[string]string

	// JSONBody is a structured payload marshalled to JSON.
	JSONBody any
	// Data is a raw or pre-encoded form payload sent as-is.
	Data []byte

	// DedupeParams removes Params entries already satisfied by the URL's own
	// query string (same key, same value). Same key with a different value is
	// kept on both sides to surface the ambiguous intent.
	DedupeParams bool
}

// requestSpec is a Request resolved once per logical call: URL parsed, params
// merged, body encoded. Attempts rebuild *http.Request values from it so a
// drained body never leaks between attempts.
type requestSpec struct {
	method  string
	url     *url.URL
	headers map[string]string
	body    []byte
	// contentType is set when the body encoding implies one.
	contentType string
}

// newRequestSpec validates and resolves a Request. All failures are
// config-kind RequestErrors: they are caller mistakes and are never retried.
func newRequestSpec(req Request) (*requestSpec, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		return nil, configError(req, "request method must not be empty")
	}

	if req.JSONBody != nil && req.Data != nil {
		return nil, configError(req, "either a JSON body or raw data can be supplied, not both")
	}

	u, err := url.Parse(req.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, configError(req, fmt.Sprintf("invalid request URL %q", req.URL))
	}

	params := req.Params
	if req.DedupeParams {
		params = dedupeQueryParams(u, params)
	}
	mergeQuery(u, params)

	spec := &requestSpec{
		method:  method,
		url:     u,
		headers: req.Headers,
	}

	if bodyMethods[method] {
		switch {
		case req.JSONBody != nil:
			body, err := json.Marshal(req.JSONBody)
			if err != nil {
				return nil, configError(req, fmt.Sprintf("failed to encode JSON body: %v", err))
			}
			spec.body = body
			spec.contentType = "application/json"
		case req.Data != nil:
			spec.body = req.Data
		}
	}

	return spec, nil
}

func configError(req Request, message string) *errors.RequestError {
	return errors.NewRequestError(strings.ToUpper(req.Method), req.URL, errors.FailureConfig, message, nil)
}

// dedupeQueryParams drops params whose string value equals the value already
// encoded in the URL's query for the same key. Keys present with different
// values are kept.
func dedupeQueryParams(u *url.URL, params map[string]string) map[string]string {
	if len(params) == 0 {
		return params
	}
	embedded := u.Query()
	out := make(map[string]string, len(params))
	for k, v := range params {
		if vs, ok := embedded[k]; ok && len(vs) > 0 && vs[0] == v {
			continue
		}
		out[k] = v
	}
	return out
}

// mergeQuery appends params to the URL's query string, keeping any values the
// URL already carries for the same key.
func mergeQuery(u *url.URL, params map[string]string) {
	if len(params) == 0 {
		return
	}
	q := u.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	u.RawQuery = q.Encode()
}

// build produces a fresh *http.Request for one attempt. Header precedence:
// client base headers, then the authenticator, then per-call headers.
func (s *requestSpec) build(ctx context.Context, base map[string]string, authenticator auth.Authenticator) (*http.Request, error) {
	var body *bytes.Reader
	if s.body != nil {
		body = bytes.NewReader(s.body)
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, s.method, s.url.String(), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, s.method, s.url.String(), nil)
	}
	if err != nil {
		return nil, err
	}

	for k, v := range base {
		req.Header.Set(k, v)
	}
	if s.contentType != "" {
		req.Header.Set("Content-Type", s.contentType)
	}
	if authenticator != nil {
		if err := authenticator.Apply(req); err != nil {
			return nil, fmt.Errorf("authenticator failed: %w", err)
		}
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}
