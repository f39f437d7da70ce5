package handler

import (
	"strings"

	"github.com/tidwall/gjson"

	"connkit/pkg/transport"
)

// maxRawMessageBytes bounds how much of an unstructured error body makes it
// into diagnostics.
const maxRawMessageBytes = 1024

// messageKeys are probed in order against a structured error body.
var messageKeys = []string{
	"message",
	"error",
	"error_message",
	"msg",
	"detail",
	"title",
	"errors.0.message",
	"errors.0",
}

// MessageParser derives a human-readable message from an error response body.
type MessageParser interface {
	ParseErrorMessage(resp *transport.Response) string
}

// JSONMessageParser probes common error keys in a JSON body and falls back to
// the raw body text, bounded in size. The probe works directly on the raw
// bytes so malformed or huge bodies never pay a full decode.
type JSONMessageParser struct{}

func NewJSONMessageParser() *JSONMessageParser {
	return &JSONMessageParser{}
}

func (p *JSONMessageParser) ParseErrorMessage(resp *transport.Response) string {
	if resp == nil {
		return ""
	}
	body := resp.Body()
	if len(body) == 0 {
		return ""
	}

	if gjson.ValidBytes(body) {
		for _, key := range messageKeys {
			if value := gjson.GetBytes(body, key); value.Exists() {
				if msg := strings.TrimSpace(value.String()); msg != "" {
					return msg
				}
			}
		}
	}

	raw := strings.TrimSpace(resp.Text())
	if len(raw) > maxRawMessageBytes {
		raw = raw[:maxRawMessageBytes]
	}
	return raw
}
