package cache

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connkit/pkg/transport"
)

func mustRequest(t *testing.T, method, rawURL string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, rawURL, nil)
	require.NoError(t, err)
	return req
}

func TestKeyNormalizesQueryOrder(t *testing.T) {
	a := Key(mustRequest(t, "GET", "http://api.example.com/items?b=2&a=1"))
	b := Key(mustRequest(t, "GET", "http://api.example.com/items?a=1&b=2"))
	assert.Equal(t, a, b)
}

func TestKeyDistinguishesRequests(t *testing.T) {
	base := Key(mustRequest(t, "GET", "http://api.example.com/items?a=1"))

	assert.NotEqual(t, base, Key(mustRequest(t, "POST", "http://api.example.com/items?a=1")))
	assert.NotEqual(t, base, Key(mustRequest(t, "GET", "http://api.example.com/items?a=2")))
	assert.NotEqual(t, base, Key(mustRequest(t, "GET", "http://api.example.com/other?a=1")))
	assert.NotEqual(t, base, Key(mustRequest(t, "GET", "http://other.example.com/items?a=1")))
}

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	key := Key(mustRequest(t, "GET", "http://api.example.com/items"))

	_, ok := m.Get(key)
	assert.False(t, ok)

	stored := transport.NewResponse(200, nil, []byte(`{"items":[]}`))
	m.Set(key, stored)

	got, ok := m.Get(key)
	require.True(t, ok)
	assert.Equal(t, stored, got)
	assert.Equal(t, 1, m.Len())
}
