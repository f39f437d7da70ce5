package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"connkit/pkg/auth"
	"connkit/pkg/backoff"
	"connkit/pkg/budget"
	"connkit/pkg/cache"
	"connkit/pkg/errors"
	"connkit/pkg/handler"
	"connkit/pkg/logger"
	"connkit/pkg/transport"
)

// Built-in retry bounds, used when neither the error handler, any backoff
// strategy, nor the client options say otherwise.
const (
	DefaultMaxRetries = 5
	DefaultMaxTime    = 600 * time.Second
	DefaultFactor     = 5.0
)

// Client executes logical HTTP requests with classification, budgeted call
// rates, and a bounded retry loop. One Client is safe for concurrent use by
// many logical requests; all retry state lives on the call stack of a single
// Send invocation.
type Client struct {
	name       string
	sender     transport.Sender
	log        logger.Logger
	errHandler handler.ErrorHandler
	strategies []backoff.Strategy
	parser     handler.MessageParser
	callBudget *budget.Budget
	authn      auth.Authenticator
	respCache  cache.ResponseCache
	baseHdrs   map[string]string

	maxRetries int
	maxTime    time.Duration
	factor     float64

	// sleep is replaced in tests to observe delays without real waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithSender replaces the network transport.
func WithSender(s transport.Sender) Option {
	return func(c *Client) { c.sender = s }
}

// WithHTTPClient sends through the given *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.sender = transport.NewHTTPSender(hc) }
}

// WithLogger sets the structured logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithErrorHandler replaces the outcome classifier.
func WithErrorHandler(h handler.ErrorHandler) Option {
	return func(c *Client) { c.errHandler = h }
}

// WithBackoffStrategies sets the ordered strategy chain consulted on RETRY.
func WithBackoffStrategies(strategies ...backoff.Strategy) Option {
	return func(c *Client) { c.strategies = strategies }
}

// WithMessageParser replaces the error-body message extractor.
func WithMessageParser(p handler.MessageParser) Option {
	return func(c *Client) { c.parser = p }
}

// WithBudget gates outgoing calls against the given call-rate budget.
func WithBudget(b *budget.Budget) Option {
	return func(c *Client) { c.callBudget = b }
}

// WithAuthenticator applies authentication while building each attempt.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(c *Client) { c.authn = a }
}

// WithCache serves repeat GETs from the given cache without spending quota.
func WithCache(rc cache.ResponseCache) Option {
	return func(c *Client) { c.respCache = rc }
}

// WithBaseHeaders sets headers applied to every request before the
// authenticator and per-call headers.
func WithBaseHeaders(headers map[string]string) Option {
	return func(c *Client) { c.baseHdrs = headers }
}

// WithRetryDefaults replaces the built-in retry bounds. Error handlers and
// backoff strategies still take precedence per the resolution rules.
func WithRetryDefaults(maxRetries int, maxTime time.Duration, factor float64) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.maxTime = maxTime
		c.factor = factor
	}
}

// New creates a Client named for its connector. Without options it uses the
// default status handler, the Retry-After strategy, an unthrottled budget,
// and a 60s per-call timeout.
func New(name string, opts ...Option) *Client {
	c := &Client{
		name:       name,
		sender:     transport.NewHTTPSender(&http.Client{Timeout: 60 * time.Second}),
		log:        logger.GetLogger(),
		errHandler: handler.NewStatusHandler(),
		strategies: []backoff.Strategy{backoff.NewRetryAfter()},
		parser:     handler.NewJSONMessageParser(),
		maxRetries: DefaultMaxRetries,
		maxTime:    DefaultMaxTime,
		factor:     DefaultFactor,
		sleep:      backoff.Wait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resolvedLimits are the retry bounds for one logical request, computed once
// per Send with deterministic precedence: error handler first, then the first
// backoff strategy exposing an override, then the client defaults.
type resolvedLimits struct {
	maxTries int
	maxTime  time.Duration
	factor   float64
}

func (c *Client) resolveLimits() resolvedLimits {
	maxRetries := c.maxRetries
	handlerLimits := c.errHandler.Limits()
	if handlerLimits.MaxRetries != nil {
		maxRetries = *handlerLimits.MaxRetries
	} else {
		for _, s := range c.strategies {
			if l := s.Limits(); l.MaxRetries != nil {
				maxRetries = *l.MaxRetries
				break
			}
		}
	}

	maxTime := c.maxTime
	if handlerLimits.MaxTime != nil {
		maxTime = *handlerLimits.MaxTime
	} else {
		for _, s := range c.strategies {
			if l := s.Limits(); l.MaxTime != nil {
				maxTime = *l.MaxTime
				break
			}
		}
	}

	factor := c.factor
	for _, s := range c.strategies {
		if l := s.Limits(); l.Factor != nil {
			factor = *l.Factor
			break
		}
	}

	if maxRetries < 0 {
		maxRetries = 0
	}
	return resolvedLimits{maxTries: maxRetries + 1, maxTime: maxTime, factor: factor}
}

// retryContext is the per-logical-request retry state. It lives on the stack
// of one Send call and is never shared or persisted.
type retryContext struct {
	attempt int
	started time.Time
	// slept is the cumulative backoff delay granted so far. Real elapsed time
	// includes it, but it is tracked separately so the max_time bound also
	// binds when the sleep function is replaced with one that does not
	// advance the wall clock.
	slept time.Duration
}

// spent returns the time consumed by this logical request: real elapsed wall
// time, or the cumulative granted sleep when that is larger.
func (rc *retryContext) spent() time.Duration {
	elapsed := time.Since(rc.started)
	if rc.slept > elapsed {
		return rc.slept
	}
	return elapsed
}

// Send executes one logical request: build, budget, send, classify, and
// retry within the resolved bounds. It returns the issued request and the
// response on success or explicit IGNORE; every other path returns a
// *errors.RequestError tagged with a failure kind.
func (c *Client) Send(ctx context.Context, req Request) (*http.Request, *transport.Response, error) {
	spec, err := newRequestSpec(req)
	if err != nil {
		return nil, nil, err
	}

	limits := c.resolveLimits()
	log := c.log.WithFields(map[string]interface{}{
		"client":     c.name,
		"request_id": uuid.NewString(),
		"method":     spec.method,
		"url":        spec.url.String(),
	})

	rc := &retryContext{attempt: 1, started: time.Now()}
	for {
		httpReq, resp, err := c.attempt(ctx, spec, limits, rc, log)
		if err == nil || !isRetrySignal(err) {
			return httpReq, resp, err
		}
		rc.attempt++
	}
}

// retrySignal is the internal marker error telling Send's loop to go around
// again. It never escapes Send.
type retrySignal struct{}

func (retrySignal) Error() string { return "retry" }

func isRetrySignal(err error) bool {
	_, ok := err.(retrySignal)
	return ok
}

func (c *Client) attempt(
	ctx context.Context,
	spec *requestSpec,
	limits resolvedLimits,
	rc *retryContext,
	log logger.Logger,
) (*http.Request, *transport.Response, error) {
	httpReq, err := spec.build(ctx, c.baseHdrs, c.authn)
	if err != nil {
		return nil, nil, errors.NewRequestError(
			spec.method, spec.url.String(), errors.FailureSystem,
			fmt.Sprintf("failed to build request: %v", err), err,
		)
	}

	desc := budget.Descriptor{Method: spec.method, Path: spec.url.Path}

	cacheKey := ""
	var cached *transport.Response
	if c.respCache != nil && spec.method == http.MethodGet {
		cacheKey = cache.Key(httpReq)
		if hit, ok := c.respCache.Get(cacheKey); ok {
			cached = hit
			desc.ServedFromCache = true
		}
	}

	if err := c.callBudget.Acquire(ctx, desc); err != nil {
		return httpReq, nil, errors.NewRequestError(
			spec.method, spec.url.String(), errors.FailureSystem,
			fmt.Sprintf("aborted while waiting for a call-rate slot: %v", err), err,
		)
	}

	if cached != nil {
		log.DebugWithFields("serving response from cache", map[string]interface{}{
			"status": cached.StatusCode,
		})
		return httpReq, cached, nil
	}

	log.DebugWithFields("making outbound API request", map[string]interface{}{
		"attempt": rc.attempt,
	})

	start := time.Now()
	resp, sendErr := c.sender.Send(httpReq)
	duration := time.Since(start)

	// Body decode is costly on large responses; only debug logging pays it.
	if resp != nil && c.log.DebugEnabled() {
		log.DebugWithFields("received response", map[string]interface{}{
			"status":      resp.StatusCode,
			"duration_ms": duration.Milliseconds(),
			"body":        resp.Text(),
		})
	}

	resolution := c.errHandler.Interpret(resp, sendErr)

	switch resolution.Action {
	case errors.ActionFail:
		return httpReq, resp, c.terminalError(spec, resp, sendErr, resolution.Kind, resolution.Message)

	case errors.ActionIgnore:
		msg := resolution.Message
		if msg == "" {
			if resp != nil {
				msg = fmt.Sprintf("ignoring response with status code '%d'", resp.StatusCode)
			} else {
				msg = fmt.Sprintf("ignoring error '%v'", sendErr)
			}
		}
		log.InfoWithFields(msg, map[string]interface{}{"attempt": rc.attempt})
		return httpReq, resp, nil

	case errors.ActionRetry:
		delay := c.backoffDelay(resp, sendErr, rc.attempt, limits.factor)
		kind := resolution.Kind
		if kind == "" {
			kind = errors.FailureTransient
		}

		if rc.attempt >= limits.maxTries {
			log.ErrorWithFields("max retries exceeded", map[string]interface{}{
				"attempts": rc.attempt,
			})
			return httpReq, resp, c.terminalError(spec, resp, sendErr, kind, resolution.Message)
		}
		if rc.spent()+delay > limits.maxTime {
			log.ErrorWithFields("retry time budget exceeded", map[string]interface{}{
				"attempts":   rc.attempt,
				"elapsed_ms": rc.spent().Milliseconds(),
			})
			return httpReq, resp, c.terminalError(spec, resp, sendErr, kind, resolution.Message)
		}

		log.WarnWithFields("retrying request", map[string]interface{}{
			"attempt":   rc.attempt,
			"max_tries": limits.maxTries,
			"delay_ms":  delay.Milliseconds(),
		})
		if err := c.sleep(ctx, delay); err != nil {
			return httpReq, resp, c.terminalError(spec, resp, sendErr, errors.FailureSystem, "retry cancelled")
		}
		rc.slept += delay
		return httpReq, resp, retrySignal{}

	case errors.ActionSucceed:
		c.storeInCache(cacheKey, resp)
		return httpReq, resp, nil

	default:
		// No explicit resolution: success for 2xx, unclassified failure
		// otherwise.
		if resp != nil && resp.Success() {
			c.storeInCache(cacheKey, resp)
			return httpReq, resp, nil
		}
		return httpReq, resp, c.terminalError(spec, resp, sendErr, errors.FailureSystem, "")
	}
}

// backoffDelay consults the strategies in order; the first to answer wins,
// otherwise the exponential fallback factor * 2^(attempt-1) applies.
func (c *Client) backoffDelay(resp *transport.Response, sendErr error, attempt int, factor float64) time.Duration {
	for _, s := range c.strategies {
		if delay, ok := s.Next(resp, sendErr, attempt); ok {
			return delay
		}
	}
	fallback := &backoff.Exponential{Factor: factor}
	delay, _ := fallback.Next(resp, sendErr, attempt)
	return delay
}

func (c *Client) storeInCache(key string, resp *transport.Response) {
	if key == "" || resp == nil || c.respCache == nil || !resp.Success() {
		return
	}
	c.respCache.Set(key, resp)
}

// terminalError builds the fatal error for FAIL and exhausted-RETRY paths,
// with an internal diagnostic distinct from the handler's optional message.
func (c *Client) terminalError(
	spec *requestSpec,
	resp *transport.Response,
	sendErr error,
	kind errors.FailureKind,
	userMessage string,
) *errors.RequestError {
	if kind == "" {
		kind = errors.FailureSystem
	}

	reqErr := &errors.RequestError{
		Method:  spec.method,
		URL:     spec.url.String(),
		Kind:    kind,
		Message: userMessage,
		Err:     sendErr,
	}
	if resp != nil {
		reqErr.StatusCode = resp.StatusCode
		reqErr.Internal = fmt.Sprintf(
			"'%s' request to '%s' failed with status code '%d' and error message '%s'",
			spec.method, spec.url, resp.StatusCode, c.parser.ParseErrorMessage(resp),
		)
	} else {
		reqErr.Internal = fmt.Sprintf(
			"'%s' request to '%s' failed with exception: '%v'",
			spec.method, spec.url, sendErr,
		)
	}
	return reqErr
}
