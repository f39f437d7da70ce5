package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"connkit/pkg/transport"
)

func TestJSONMessageParser(t *testing.T) {
	p := NewJSONMessageParser()

	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"message key", `{"message":"quota exceeded"}`, "quota exceeded"},
		{"error key", `{"error":"invalid project id"}`, "invalid project id"},
		{"error_message key", `{"error_message":"bad token"}`, "bad token"},
		{"msg key", `{"msg":"slow down"}`, "slow down"},
		{"detail key", `{"detail":"not permitted"}`, "not permitted"},
		{"title key", `{"title":"Service Unavailable"}`, "Service Unavailable"},
		{"nested errors array", `{"errors":[{"message":"field x is required"}]}`, "field x is required"},
		{"errors array of strings", `{"errors":["plain failure"]}`, "plain failure"},
		{"message wins over error", `{"error":"second","message":"first"}`, "first"},
		{"empty message falls through", `{"message":"","error":"real cause"}`, "real cause"},
		{"non-json body", "<html>502 Bad Gateway</html>", "<html>502 Bad Gateway</html>"},
		{"json without known keys", `{"status":"failed"}`, `{"status":"failed"}`},
		{"empty body", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := transport.NewResponse(500, nil, []byte(tt.body))
			assert.Equal(t, tt.expected, p.ParseErrorMessage(resp))
		})
	}
}

func TestJSONMessageParserBoundsRawBody(t *testing.T) {
	p := NewJSONMessageParser()

	huge := strings.Repeat("x", 10_000)
	resp := transport.NewResponse(500, nil, []byte(huge))

	msg := p.ParseErrorMessage(resp)
	assert.Len(t, msg, maxRawMessageBytes)
}

func TestJSONMessageParserNilResponse(t *testing.T) {
	p := NewJSONMessageParser()
	assert.Equal(t, "", p.ParseErrorMessage(nil))
}
