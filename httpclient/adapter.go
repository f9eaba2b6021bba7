package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/deskhub/logger"
	"github.com/kbukum/deskhub/resilience"
)

// Adapter is a configurable HTTP adapter with cookies, TLS and resilience.
// It is safe for concurrent use.
type Adapter struct {
	httpClient *http.Client
	config     Config
	cb         *resilience.CircuitBreaker
	rl         *resilience.RateLimiter
	log        *logger.Logger
}

// Option customises an Adapter.
type Option func(*Adapter)

// WithTransport replaces the HTTP transport (TLS settings are not applied to it).
func WithTransport(rt http.RoundTripper) Option {
	return func(a *Adapter) { a.httpClient.Transport = rt }
}

// WithLogger sets the logger used for retry and circuit events.
func WithLogger(l *logger.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// New creates a new HTTP adapter with the given configuration.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.TLS != nil {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			transport.TLSClientConfig = tlsCfg
		}
	}

	a := &Adapter{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			Jar:       cfg.Jar,
		},
		config: cfg,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.WithComponent("httpclient." + cfg.Name)
	}

	if cfg.Retry != nil {
		retry := *cfg.Retry
		if retry.RetryIf == nil {
			retry.RetryIf = IsRetryable
		}
		if retry.OnRetry == nil {
			retry.OnRetry = a.logRetry
		}
		a.config.Retry = &retry
	}
	if cfg.CircuitBreaker != nil {
		cbCfg := *cfg.CircuitBreaker
		if cbCfg.IsFailure == nil {
			cbCfg.IsFailure = IsRetryable
		}
		if cbCfg.OnStateChange == nil {
			cbCfg.OnStateChange = a.logStateChange
		}
		a.cb = resilience.NewCircuitBreaker(cbCfg)
	}
	if cfg.RateLimiter != nil {
		a.rl = resilience.NewRateLimiter(*cfg.RateLimiter)
	}

	return a, nil
}

// Do executes an HTTP request. For non-2xx statuses both the response and
// a classified *Error are returned.
func (a *Adapter) Do(ctx context.Context, req Request) (*Response, error) {
	req, err := req.Buffered()
	if err != nil {
		return nil, err
	}

	if a.config.Retry == nil {
		return a.doOnce(ctx, req)
	}

	var last *Response
	_, err = resilience.Retry(ctx, *a.config.Retry, func() (*Response, error) {
		resp, err := a.doOnce(ctx, req)
		last = resp
		return resp, err
	})
	var httpErr *Error
	if err != nil && !errors.As(err, &httpErr) {
		return nil, classifyContextErr(ctx, err)
	}
	return last, err
}

// BaseURL returns the configured base URL.
func (a *Adapter) BaseURL() string {
	return a.config.BaseURL
}

// Jar returns the cookie jar, or nil.
func (a *Adapter) Jar() http.CookieJar {
	return a.httpClient.Jar
}

func (a *Adapter) doOnce(ctx context.Context, req Request) (*Response, error) {
	if a.rl != nil {
		if err := a.rl.Wait(ctx); err != nil {
			return nil, NewTimeoutError(err)
		}
	}

	if a.cb == nil {
		return a.execute(ctx, req)
	}

	var resp *Response
	err := a.cb.Execute(func() error {
		var execErr error
		resp, execErr = a.execute(ctx, req)
		return execErr
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, NewUnavailableError(err)
	}
	return resp, err
}

func (a *Adapter) execute(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := a.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
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

// buildRequest resolves the URL and applies query, headers and body.
// req must already be buffered.
func (a *Adapter) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := resolveURL(a.config.BaseURL, req.Path)

	var body io.Reader
	if data, ok := req.Body.([]byte); ok && data != nil {
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	return httpReq, nil
}

func resolveURL(base, path string) string {
	if base == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base = strings.TrimRight(base, "/")
	if path == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(path, "/")
}

func classifyTransportError(ctx context.Context, err error) *Error {
	if ctx.Err() != nil {
		return NewTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError(err)
	}
	return NewConnectionError(err)
}

// classifyContextErr turns a bare error from the retry loop, such as a
// cancelled context during backoff, into a classified one.
func classifyContextErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return NewTimeoutError(err)
	}
	return err
}

func (a *Adapter) logRetry(attempt int, err error, backoff time.Duration) {
	a.log.Warn("Retrying request", map[string]interface{}{
		"attempt":         attempt,
		logger.FieldError: err.Error(),
		"backoff_ms":      backoff.Milliseconds(),
	})
}

func (a *Adapter) logStateChange(name string, from, to resilience.State) {
	a.log.Warn("Circuit breaker state changed", map[string]interface{}{
		"breaker": name,
		"from":    from.String(),
		"to":      to.String(),
	})
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
