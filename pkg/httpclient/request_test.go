package httpclient

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connkit/pkg/auth"
	"connkit/pkg/errors"
)

func TestBothBodiesIsConfigError(t *testing.T) {
	_, err := newRequestSpec(Request{
		Method:   "POST",
		URL:      "http://api.example.com/items",
		JSONBody: map[string]string{"a": "1"},
		Data:     []byte("a=1"),
	})

	var reqErr *errors.RequestError
	require.True(t, stderrors.As(err, &reqErr))
	assert.Equal(t, errors.FailureConfig, reqErr.Kind)
}

func TestInvalidURLIsConfigError(t *testing.T) {
	for _, rawURL := range []string{"", "not a url", "/relative/only"} {
		_, err := newRequestSpec(Request{Method: "GET", URL: rawURL})

		var reqErr *errors.RequestError
		require.True(t, stderrors.As(err, &reqErr), "url %q", rawURL)
		assert.Equal(t, errors.FailureConfig, reqErr.Kind)
	}
}

func TestDedupeDropsMatchingParam(t *testing.T) {
	spec, err := newRequestSpec(Request{
		Method:       "GET",
		URL:          "http://x/?a=1",
		Params:       map[string]string{"a": "1"},
		DedupeParams: true,
	})
	require.NoError(t, err)

	values := spec.url.Query()
	assert.Equal(t, []string{"1"}, values["a"], "only the URL-embedded value remains")
}

func TestDedupeKeepsDifferingValues(t *testing.T) {
	spec, err := newRequestSpec(Request{
		Method:       "GET",
		URL:          "http://x/?a=1",
		Params:       map[string]string{"a": "2"},
		DedupeParams: true,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"1", "2"}, spec.url.Query()["a"])
}

func TestDedupeDisabledDuplicates(t *testing.T) {
	spec, err := newRequestSpec(Request{
		Method: "GET",
		URL:    "http://x/?a=1",
		Params: map[string]string{"a": "1"},
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"1", "1"}, spec.url.Query()["a"])
}

func TestDedupeMixedParams(t *testing.T) {
	spec, err := newRequestSpec(Request{
		Method:       "GET",
		URL:          "http://x/?a=1&b=keep",
		Params:       map[string]string{"a": "1", "c": "new"},
		DedupeParams: true,
	})
	require.NoError(t, err)

	values := spec.url.Query()
	assert.Equal(t, []string{"1"}, values["a"])
	assert.Equal(t, []string{"keep"}, values["b"])
	assert.Equal(t, []string{"new"}, values["c"])
}

func TestJSONBodyEncoding(t *testing.T) {
	spec, err := newRequestSpec(Request{
		Method:   "POST",
		URL:      "http://x/items",
		JSONBody: map[string]any{"name": "widget", "count": 2},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"widget","count":2}`, string(spec.body))
	assert.Equal(t, "application/json", spec.contentType)
}

func TestBodyIgnoredForNonBodyMethods(t *testing.T) {
	spec, err := newRequestSpec(Request{
		Method: "DELETE",
		URL:    "http://x/items/1",
		Data:   []byte("ignored"),
	})
	require.NoError(t, err)
	assert.Nil(t, spec.body)
}

func TestBuildHeaderPrecedence(t *testing.T) {
	spec, err := newRequestSpec(Request{
		Method:  "GET",
		URL:     "http://x/items",
		Headers: map[string]string{"X-Layer": "per-call", "X-Call": "yes"},
	})
	require.NoError(t, err)

	base := map[string]string{"X-Layer": "base", "X-Base": "yes"}
	authn := &auth.APIKey{Header: "X-Layer", Key: "auth"}

	req, err := spec.build(context.Background(), base, authn)
	require.NoError(t, err)

	// base < authenticator < per-call
	assert.Equal(t, "per-call", req.Header.Get("X-Layer"))
	assert.Equal(t, "yes", req.Header.Get("X-Base"))
	assert.Equal(t, "yes", req.Header.Get("X-Call"))
}

func TestBuildProducesFreshBodyPerAttempt(t *testing.T) {
	spec, err := newRequestSpec(Request{
		Method: "POST",
		URL:    "http://x/items",
		Data:   []byte("payload"),
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		req, err := spec.build(context.Background(), nil, nil)
		require.NoError(t, err)
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(body), "attempt %d", i+1)
	}
}

func TestMethodNormalized(t *testing.T) {
	spec, err := newRequestSpec(Request{Method: "get", URL: "http://x/"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, spec.method)
}
