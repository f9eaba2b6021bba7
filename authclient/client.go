package authclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/kbukum/deskhub/httpclient"
	"github.com/kbukum/deskhub/logger"
	"github.com/kbukum/deskhub/role"
)

// Client is the API client of one role. It is safe for concurrent use.
type Client struct {
	role    role.Role
	cfg     Config
	http    *httpclient.Adapter
	gateway SessionGateway
	log     *logger.Logger
	metrics *metrics
	tracer  trace.Tracer

	flight     singleflight.Group
	refreshing atomic.Bool
	// last is the outcome of the most recent refresh. Requests remember the
	// epoch they were sent in so a late 401 does not refresh twice.
	last atomic.Pointer[refreshResult]
}

type refreshResult struct {
	epoch uint64
	err   error
}

type options struct {
	jar            http.CookieJar
	log            *logger.Logger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	httpOpts       []httpclient.Option
}

// Option customises a Client.
type Option func(*options)

// WithJar sets the cookie jar holding the session credentials. Clients of
// one Set share a jar.
func WithJar(jar http.CookieJar) Option {
	return func(o *options) { o.jar = jar }
}

// WithLogger sets the logger. Defaults to the logger registered as
// authclient.<role>, falling back to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMeterProvider sets the provider of the refresh, replay and
// termination counters. Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithTracerProvider sets the provider of the refresh span. Defaults to the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.httpOpts = append(o.httpOpts, httpclient.WithTransport(rt)) }
}

// New creates the client of role r. gw receives terminal failures.
func New(r role.Role, cfg Config, gw SessionGateway, opts ...Option) (*Client, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("authclient: invalid role %q", r)
	}
	if gw == nil {
		return nil, errors.New("authclient: session gateway is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.jar == nil {
		jar, err := httpclient.NewCookieJar()
		if err != nil {
			return nil, err
		}
		o.jar = jar
	}
	if o.log == nil {
		o.log = logger.Get("authclient." + r.String())
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}

	hc := cfg.httpConfig(r)
	hc.Jar = o.jar
	adapter, err := httpclient.New(hc, append([]httpclient.Option{httpclient.WithLogger(o.log)}, o.httpOpts...)...)
	if err != nil {
		return nil, err
	}

	m, err := newMetrics(o.meterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}

	c := &Client{
		role:    r,
		cfg:     cfg,
		http:    adapter,
		gateway: gw,
		log:     o.log,
		metrics: m,
		tracer:  o.tracerProvider.Tracer(instrumentationName),
	}
	c.last.Store(&refreshResult{})
	return c, nil
}

// Role returns the role the client is bound to.
func (c *Client) Role() role.Role {
	return c.role
}

// BaseURL returns {backend}/{segment}.
func (c *Client) BaseURL() string {
	return c.http.BaseURL()
}

// Jar returns the cookie jar holding the session credentials.
func (c *Client) Jar() http.CookieJar {
	return c.http.Jar()
}

// Refreshing reports whether a credential refresh is in flight.
func (c *Client) Refreshing() bool {
	return c.refreshing.Load()
}

// Do sends req under the role's base URL and applies the failure policy.
//
// On success the response is returned. On pass-through failures the
// response (when the server answered) and the *httpclient.Error are
// returned. Terminal failures return a *SessionTerminatedError after the
// session gateway ran.
func (c *Client) Do(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
	req, err := req.Buffered()
	if err != nil {
		return nil, err
	}

	epoch := c.last.Load().epoch
	resp, err := c.http.Do(ctx, req)
	if err == nil {
		return resp, nil
	}
	return c.handleFailure(ctx, req, epoch, false, resp, err)
}

func (c *Client) handleFailure(ctx context.Context, req httpclient.Request, epoch uint64, retried bool,
	resp *httpclient.Response, err error) (*httpclient.Response, error) {
	f, ok := FailureFromError(err)
	if !ok {
		return resp, err
	}

	action, reason := Classify(f, retried)
	switch action {
	case ActionTerminate:
		return resp, c.terminate(ctx, reason, err)

	case ActionRefresh:
		if rerr := c.refresh(ctx, epoch); rerr != nil {
			return nil, rerr
		}

		replayed, rerr := c.http.Do(ctx, req)
		if rerr == nil {
			c.metrics.recordReplay(ctx, c.role.String(), outcomeSuccess)
			return replayed, nil
		}
		c.metrics.recordReplay(ctx, c.role.String(), outcomeFailure)
		c.log.Debug("Replay failed", logger.Fields(
			logger.FieldMethod, req.Method,
			logger.FieldPath, req.Path,
			logger.FieldStatus, httpclient.StatusCode(rerr),
		))
		return c.handleFailure(ctx, req, epoch, true, replayed, rerr)
	}

	return resp, err
}

// terminate ends the session and builds the error returned to the caller.
// The gateway runs even when the caller's context is already cancelled.
func (c *Client) terminate(ctx context.Context, reason Reason, cause error) error {
	ctx = context.WithoutCancel(ctx)

	c.log.Warn("Terminating session", map[string]interface{}{
		logger.FieldReason: string(reason),
		logger.FieldError:  cause.Error(),
	})
	if err := c.gateway.OnTerminalFailure(ctx, c.role, string(reason)); err != nil {
		c.log.Error("Session gateway failed", logger.ErrorFields("terminate", err))
	}
	c.gateway.Notify(ctx, reason.Message())
	c.metrics.recordTermination(ctx, c.role.String(), reason)

	return &SessionTerminatedError{Role: c.role, Reason: reason, Err: cause}
}
