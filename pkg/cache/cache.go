// Package cache defines the response-cache surface consumed by the request
// executor. The executor only needs lookup and store by a normalized request
// key; durable backends live outside this module. Memory is provided for
// tests and for short-lived in-process reuse.
package cache

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"connkit/pkg/transport"
)

// ResponseCache stores successful responses keyed by normalized request.
type ResponseCache interface {
	Get(key string) (*transport.Response, bool)
	Set(key string, resp *transport.Response)
}

// Key normalizes a request to a stable cache key: method, scheme, host, path,
// and the query string with keys sorted so parameter order does not split
// cache entries.
func Key(req *http.Request) string {
	u := req.URL
	var b strings.Builder
	b.WriteString(strings.ToUpper(req.Method))
	b.WriteByte(' ')
	b.WriteString(u.Scheme)
	b.WriteString("://")
	b.WriteString(u.Host)
	b.WriteString(u.Path)
	if q := normalizeQuery(u.Query()); q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}
	return b.String()
}

func normalizeQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		vs := append([]string(nil), values[k]...)
		sort.Strings(vs)
		for _, v := range vs {
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(parts, "&")
}

// Memory is a concurrency-safe in-memory ResponseCache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*transport.Response
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*transport.Response)}
}

func (m *Memory) Get(key string) (*transport.Response, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp, ok := m.entries[key]
	return resp, ok
}

func (m *Memory) Set(key string, resp *transport.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = resp
}

// Len reports the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
