package handler

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connkit/pkg/errors"
	"connkit/pkg/transport"
)

func resp(code int) *transport.Response {
	return transport.NewResponse(code, http.Header{}, nil)
}

func TestStatusHandlerDefaultTable(t *testing.T) {
	h := NewStatusHandler()

	tests := []struct {
		code   int
		action errors.ResponseAction
		kind   errors.FailureKind
	}{
		{200, errors.ActionSucceed, ""},
		{201, errors.ActionSucceed, ""},
		{204, errors.ActionSucceed, ""},
		{408, errors.ActionRetry, errors.FailureTransient},
		{429, errors.ActionRetry, errors.FailureTransient},
		{500, errors.ActionRetry, errors.FailureTransient},
		{502, errors.ActionRetry, errors.FailureTransient},
		{503, errors.ActionRetry, errors.FailureTransient},
		{400, errors.ActionFail, errors.FailureConfig},
		{401, errors.ActionFail, errors.FailureConfig},
		{403, errors.ActionFail, errors.FailureConfig},
		{422, errors.ActionFail, errors.FailureConfig},
		{404, errors.ActionFail, errors.FailureSystem},
		{405, errors.ActionFail, errors.FailureSystem},
		{410, errors.ActionFail, errors.FailureSystem},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.code), func(t *testing.T) {
			res := h.Interpret(resp(tt.code), nil)
			assert.Equal(t, tt.action, res.Action)
			assert.Equal(t, tt.kind, res.Kind)
		})
	}
}

func TestStatusHandlerRedirectHasNoOpinion(t *testing.T) {
	h := NewStatusHandler()

	res := h.Interpret(resp(302), nil)
	assert.Equal(t, errors.Resolution{}, res)
}

func TestStatusHandlerOverride(t *testing.T) {
	h := NewStatusHandler().
		WithStatus(404, errors.Ignore("missing objects are skipped")).
		WithStatus(500, errors.Fail(errors.FailureSystem, "this API never recovers"))

	res := h.Interpret(resp(404), nil)
	assert.Equal(t, errors.ActionIgnore, res.Action)
	assert.Equal(t, "missing objects are skipped", res.Message)

	res = h.Interpret(resp(500), nil)
	assert.Equal(t, errors.ActionFail, res.Action)
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestStatusHandlerTransportErrors(t *testing.T) {
	h := NewStatusHandler()

	tests := []struct {
		name   string
		err    error
		action errors.ResponseAction
		kind   errors.FailureKind
	}{
		{
			name:   "timeout retries",
			err:    timeoutError{},
			action: errors.ActionRetry,
			kind:   errors.FailureTransient,
		},
		{
			name:   "connection refused retries",
			err:    &net.OpError{Op: "dial", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED}},
			action: errors.ActionRetry,
			kind:   errors.FailureTransient,
		},
		{
			name:   "dns failure retries",
			err:    &net.DNSError{Err: "no such host", Name: "api.example.com"},
			action: errors.ActionRetry,
			kind:   errors.FailureTransient,
		},
		{
			name:   "deadline exceeded retries",
			err:    context.DeadlineExceeded,
			action: errors.ActionRetry,
			kind:   errors.FailureTransient,
		},
		{
			name:   "cancellation fails",
			err:    context.Canceled,
			action: errors.ActionFail,
			kind:   errors.FailureSystem,
		},
		{
			name:   "unrecognized error fails",
			err:    fmt.Errorf("something odd"),
			action: errors.ActionFail,
			kind:   errors.FailureSystem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.Interpret(nil, tt.err)
			assert.Equal(t, tt.action, res.Action)
			assert.Equal(t, tt.kind, res.Kind)
		})
	}
}

func TestStatusHandlerWrappedURLError(t *testing.T) {
	h := NewStatusHandler()

	// http.Client.Do wraps transport failures in *url.Error; classification
	// must see through the wrapper.
	err := fmt.Errorf("Get \"http://x\": %w", &net.OpError{Op: "dial", Err: syscall.ECONNRESET})
	res := h.Interpret(nil, err)
	assert.Equal(t, errors.ActionRetry, res.Action)
}

func TestStatusHandlerLimits(t *testing.T) {
	h := NewStatusHandler()
	assert.Equal(t, Limits{}, h.Limits())

	retries := 3
	maxTime := 90 * time.Second
	h.MaxRetries = &retries
	h.MaxTime = &maxTime

	limits := h.Limits()
	require.NotNil(t, limits.MaxRetries)
	assert.Equal(t, 3, *limits.MaxRetries)
	require.NotNil(t, limits.MaxTime)
	assert.Equal(t, 90*time.Second, *limits.MaxTime)
}
