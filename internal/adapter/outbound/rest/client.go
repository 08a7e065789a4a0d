// Package rest provides the resilient HTTP client for the fleet admin API.
//
// The client attaches bearer credentials from an injected TokenSource,
// retries transient failures (rate limiting, connection errors) with
// exponential backoff, and surfaces everything else as typed errors. Retries
// for one logical call are strictly sequential: attempt N+1 never starts
// before attempt N's result is known and its backoff delay has elapsed.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxResponseBodySize bounds response bodies read from the server.
const maxResponseBodySize = 10 * 1024 * 1024 // 10MB

// TokenSource supplies the current bearer token, if any. The session manager
// implements this; the client only ever reads the token, never writes it.
type TokenSource interface {
	Token() (string, bool)
}

// Client performs outbound calls to the admin API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func(context.Context)
	policy         RetryPolicy
	logger         *slog.Logger
	metrics        *Metrics
	tracer         trace.Tracer
	cache          *responseCache
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource sets the source of bearer tokens. Requests proceed without
// an Authorization header when no source is set or no token is available.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithOnUnauthorized sets the hook invoked when the server returns 401.
// The session manager uses this to terminate the local session.
func WithOnUnauthorized(fn func(context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithRetryPolicy sets the default policy used when a request carries none.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithCacheMaxSize bounds the GET response cache.
func WithCacheMaxSize(n int) Option {
	return func(c *Client) { c.cache = newResponseCache(n) }
}

// NewClient creates a client for the admin API at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		policy:  DefaultPolicy(),
		logger:  slog.Default(),
		tracer:  otel.Tracer("fleetctl/rest"),
		cache:   newResponseCache(defaultCacheMaxSize),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return c
}

// Request describes one logical API call.
type Request struct {
	// Method is the HTTP method.
	Method string
	// Path is the URL path under the base URL (e.g. "/api/v1/admin/drivers").
	Path string
	// Query holds optional query parameters.
	Query url.Values
	// Body is JSON-marshaled when non-nil.
	Body any
	// Operation labels metrics and spans. Defaults to "METHOD path".
	Operation string
	// Policy overrides the client's default retry policy when non-nil.
	Policy *RetryPolicy
	// CacheTTL enables response caching for this call when positive.
	// Only GET responses are cached.
	CacheTTL time.Duration
}

// Get performs a GET request and decodes the enveloped response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post performs a POST request. Mutating calls are not retried.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	policy := NoRetry()
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Policy: &policy}, out)
}

// Put performs a PUT request. Mutating calls are not retried.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	policy := NoRetry()
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body, Policy: &policy}, out)
}

// Patch performs a PATCH request. Mutating calls are not retried.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	policy := NoRetry()
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body, Policy: &policy}, out)
}

// Delete performs a DELETE request. Mutating calls are not retried.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	policy := NoRetry()
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Policy: &policy}, out)
}

// Do performs one logical call under the request's retry policy and decodes
// the enveloped response body into out (which may be nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	operation := req.Operation
	if operation == "" {
		operation = req.Method + " " + req.Path
	}
	policy := c.policy
	if req.Policy != nil {
		policy = *req.Policy
	}

	targetURL := c.baseURL + req.Path
	query := ""
	if len(req.Query) > 0 {
		query = req.Query.Encode()
		targetURL += "?" + query
	}

	// Cache lookup for idempotent GETs.
	key := ""
	if req.Method == http.MethodGet && req.CacheTTL > 0 {
		key = cacheKey(req.Method, req.Path, query)
		if body, ok := c.cache.get(key); ok {
			return decodeEnvelope(body, out)
		}
	}

	ctx, span := c.tracer.Start(ctx, operation, trace.WithAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.path", req.Path),
	))
	defer span.End()

	start := time.Now()
	body, err := c.invoke(ctx, req.Method, targetURL, req.Body, policy, operation)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.observe(operation, outcomeFor(err), elapsed)
		return err
	}

	c.metrics.observe(operation, "ok", elapsed)

	if key != "" {
		c.cache.put(key, body, req.CacheTTL)
	}
	return decodeEnvelope(body, out)
}

// invoke issues the HTTP attempts for one logical call. It returns the raw
// response body on success.
func (c *Client) invoke(ctx context.Context, method, targetURL string, reqBody any, policy RetryPolicy, operation string) ([]byte, error) {
	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	// One request ID per logical call, held across retries so the server can
	// correlate duplicate attempts.
	requestID := uuid.NewString()

	maxAttempts := policy.attempts()
	var lastHint time.Duration

	for attempt := 0; attempt < maxAttempts; attempt++ {
		status, respBody, retryAfter, err := c.attempt(ctx, method, targetURL, payload, requestID)

		switch {
		case err != nil:
			// Transport-level failure: DNS, connection refused, timeout.
			if attempt+1 < maxAttempts {
				if werr := c.backoff(ctx, policy.Delay(attempt), operation, attempt, err); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, &TransientError{Attempts: maxAttempts, Cause: err}

		case status == http.StatusUnauthorized:
			// Terminal: never retried. Forces local session termination, but
			// only when the call actually carried a bearer token — a rejected
			// login says nothing about the held session.
			if c.onUnauthorized != nil && c.hasToken() {
				c.onUnauthorized(ctx)
			}
			return nil, &UnauthorizedError{Message: serverMessage(respBody)}

		case status == http.StatusTooManyRequests:
			hint := retryAfterHint(retryAfter)
			if hint > 0 {
				lastHint = hint
			}
			if attempt+1 < maxAttempts {
				delay := policy.Delay(attempt)
				if hint > 0 {
					delay = hint
				}
				if werr := c.backoff(ctx, delay, operation, attempt, nil); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, &RateLimitedError{Attempts: maxAttempts, RetryAfter: lastHint}

		case status >= 200 && status < 300:
			return respBody, nil

		case policy.Retryable(status):
			if attempt+1 < maxAttempts {
				if werr := c.backoff(ctx, policy.Delay(attempt), operation, attempt, nil); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, &APIError{StatusCode: status, Message: serverMessage(respBody), Attempts: maxAttempts}

		default:
			return nil, &APIError{StatusCode: status, Message: serverMessage(respBody), Attempts: attempt + 1}
		}
	}

	// Unreachable: every branch above returns or continues within the budget.
	return nil, &TransientError{Attempts: maxAttempts}
}

// attempt issues a single HTTP request. It returns the status, the body, and
// the Retry-After header value (empty when absent).
func (c *Client) attempt(ctx context.Context, method, targetURL string, payload []byte, requestID string) (int, []byte, string, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, targetURL, bodyReader)
	if err != nil {
		return 0, nil, "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok && token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return 0, nil, "", fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, respBody, resp.Header.Get("Retry-After"), nil
}

// hasToken reports whether a bearer token is currently available.
func (c *Client) hasToken() bool {
	if c.tokens == nil {
		return false
	}
	token, ok := c.tokens.Token()
	return ok && token != ""
}

// backoff waits for the given delay, honoring context cancellation.
func (c *Client) backoff(ctx context.Context, delay time.Duration, operation string, attempt int, cause error) error {
	c.metrics.retry(operation)
	c.logger.Debug("retrying request",
		"operation", operation,
		"attempt", attempt+1,
		"delay", delay,
		"error", cause,
	)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// retryAfterHint parses a Retry-After header value: either delta-seconds or
// an HTTP date. Returns 0 when absent or unparseable.
func retryAfterHint(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// outcomeFor maps an error to a metrics outcome label.
func outcomeFor(err error) string {
	switch {
	case isUnauthorized(err):
		return "unauthorized"
	case isRateLimited(err):
		return "rate_limited"
	default:
		return "error"
	}
}

func isUnauthorized(err error) bool {
	_, ok := err.(*UnauthorizedError)
	return ok
}

func isRateLimited(err error) bool {
	_, ok := err.(*RateLimitedError)
	return ok
}
