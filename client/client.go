package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/heroes/logger"
	"github.com/kbukum/heroes/observability"
	"github.com/kbukum/heroes/resilience"
)

// Client is a configurable HTTP client for the heroes backend.
type Client struct {
	httpClient *http.Client
	config     Config
	log        *logger.Logger
	retry      resilience.RetryConfig
	breaker    *resilience.Breaker
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithHTTPClient replaces the underlying transport client. Its Timeout is
// overridden by Config.Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		httpClient: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		config:     cfg,
		log:        logger.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Timeout = cfg.Timeout
	c.log = c.log.WithComponent("client")

	c.retry = resilience.RetryConfig{
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     cfg.RetryBackoff,
		MaxBackoff:  cfg.Timeout,
		Factor:      2,
		Jitter:      0.1,
		RetryIf:     retryable,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			c.log.Debug("retrying request", logger.MergeWithError(logger.Fields("attempt", attempt, "wait_ms", wait.Milliseconds()), err))
		},
	}
	c.breaker = resilience.NewBreaker(resilience.BreakerConfig{
		Name:      cfg.BaseURL,
		Failures:  cfg.BreakerFailures,
		Cooldown:  cfg.BreakerCooldown,
		IsFailure: backendFailure,
		OnStateChange: func(name string, from, to resilience.State) {
			c.log.Warn("backend circuit "+to.String(), logger.Fields("backend", name, "from", from.String()))
		},
	})
	return c, nil
}

// CircuitState reports the backend circuit breaker state.
func (c *Client) CircuitState() resilience.State {
	return c.breaker.State()
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Do executes a request and returns the complete response. A non-2xx
// response is returned together with its classified *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanHeroesClient, trace.WithAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.path", req.Path),
	))
	defer span.End()

	retry := c.retry
	if req.Method != http.MethodGet || req.NoRetry {
		retry.MaxAttempts = 1
	}

	start := time.Now()
	var resp *Response
	_, err := resilience.Retry(ctx, retry, func(ctx context.Context) (struct{}, error) {
		resp = nil
		return struct{}{}, c.breaker.Execute(func() error {
			var err error
			resp, err = c.executeRequest(ctx, req)
			return err
		})
	})
	var clientErr *Error
	if err != nil && !errors.As(err, &clientErr) {
		err = transportError(ctx, err)
	}
	fields := logger.Fields("method", req.Method, "path", req.Path)
	if resp != nil {
		fields[logger.FieldStatus] = resp.StatusCode
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
		c.log.WithContext(ctx).Debug("request failed", logger.MergeWithError(logger.MergeWithDuration(fields, time.Since(start)), err))
		return resp, err
	}
	c.log.WithContext(ctx).Debug("request done", logger.MergeWithDuration(fields, time.Since(start)))
	return resp, nil
}

// DoStream opens a server-sent event stream. The stream is bounded by ctx
// only. The caller must Close the returned StreamResponse.
func (c *Client) DoStream(ctx context.Context, req Request) (*StreamResponse, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	streamClient := &http.Client{Transport: c.httpClient.Transport}
	var resp *http.Response
	err = c.breaker.Execute(func() error {
		var err error
		resp, err = streamClient.Do(httpReq)
		if err != nil {
			return transportError(ctx, err)
		}
		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			return ClassifyStatusCode(resp.StatusCode, body)
		}
		return nil
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, NewConnectionError(err)
	}
	if err != nil {
		return nil, err
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		_ = resp.Body.Close()
		return nil, NewDecodeError(resp.StatusCode, nil, fmt.Errorf("unexpected content type %q", ct))
	}

	return &StreamResponse{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Events:     NewEventReader(resp.Body),
		body:       resp.Body,
	}, nil
}

func (c *Client) executeRequest(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}
	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return result, classErr
	}
	return result, nil
}

// transportError distinguishes a canceled or expired request from a
// connection failure.
func transportError(ctx context.Context, err error) *Error {
	if ctx.Err() != nil {
		return NewTimeoutError(fmt.Errorf("%w: %w", ctx.Err(), err))
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError(err)
	}
	return NewConnectionError(err)
}

// retryable reports whether a failed GET is worth repeating: the backend
// was unreachable or answered with a gateway or availability error.
func retryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Code {
	case ErrCodeConnection:
		return true
	case ErrCodeServer:
		return e.StatusCode == http.StatusBadGateway ||
			e.StatusCode == http.StatusServiceUnavailable ||
			e.StatusCode == http.StatusGatewayTimeout
	default:
		return false
	}
}

// backendFailure reports whether err says something about backend health.
// Timeouts are left out: abandoned lookups are canceled all the time.
func backendFailure(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == ErrCodeConnection || e.Code == ErrCodeServer
}

// url resolves path against the base URL unless it is already absolute.
func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(c.config.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, NewValidationError("encode body: " + err.Error())
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.url(req.Path), body)
	if err != nil {
		return nil, NewValidationError("create request: " + err.Error())
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	h := httpReq.Header
	h.Set("Accept", "application/json")
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	// Request headers win over the configured defaults.
	for _, set := range []map[string]string{c.config.Headers, req.Headers} {
		for k, v := range set {
			h.Set(k, v)
		}
	}
	return httpReq, nil
}

// encodeBody passes readers, bytes and strings through and JSON-encodes
// anything else.
func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

// flattenHeaders keeps the first value of each header.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
