package client

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/learningorchestra/orchestra/internal/metrics"
	"github.com/learningorchestra/orchestra/internal/util"
)

// Call describes one submission. A nil Body makes the call a bodiless
// request on Suffix, which is how deletions are expressed. Method defaults to
// POST with a body and DELETE without one. Handle defaults to the body's
// resource name, or to Suffix when there is no body.
type Call struct {
	Method  string
	Service string
	Routed  bool
	Body    Request
	Suffix  string
	Handle  Handle
}

func (c *Call) method() string {
	if c.Method != "" {
		return c.Method
	}
	if c.Body == nil {
		return http.MethodDelete
	}
	return http.MethodPost
}

func (c *Call) handle() Handle {
	if c.Handle != "" {
		return c.Handle
	}
	if c.Body != nil {
		return Handle(c.Body.Name())
	}
	return Handle(c.Suffix)
}

type Option func(*settings)

type settings struct {
	gateway    Gateway
	httpClient *http.Client
	logger     *slog.Logger
	sleep      SleepFunc
}

// UseGateway replaces the http gateway, typically with a mock.
func UseGateway(gateway Gateway) Option {
	return func(s *settings) {
		s.gateway = gateway
	}
}

func UseHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		s.httpClient = client
	}
}

func UseLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func UseSleep(f SleepFunc) Option {
	return func(s *settings) {
		s.sleep = f
	}
}

// Client composes the gateway and the poller into asynchronous and
// synchronous submissions.
type Client struct {
	config  *Config
	gateway Gateway
	poller  *Poller
	logger  *slog.Logger
}

func New(config *Config, metrics *metrics.Metrics, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	util.Assert(metrics != nil, "metrics must not be nil")

	s := &settings{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	gateway := s.gateway
	if gateway == nil {
		gatewayOpts := []GatewayOption{WithLogger(s.logger)}
		if s.httpClient != nil {
			gatewayOpts = append(gatewayOpts, WithHTTPClient(s.httpClient))
		}

		g, err := NewGateway(config, metrics, gatewayOpts...)
		if err != nil {
			return nil, err
		}
		gateway = g
	}

	pollerOpts := []PollerOption{WithPollerLogger(s.logger)}
	if s.sleep != nil {
		pollerOpts = append(pollerOpts, WithSleep(s.sleep))
	}

	return &Client{
		config:  config,
		gateway: gateway,
		poller:  NewPoller(gateway, config, metrics, pollerOpts...),
		logger:  s.logger,
	}, nil
}

func (c *Client) Config() *Config {
	return c.config
}

// Submit performs the call once and classifies the response without
// waiting.
func (c *Client) Submit(ctx context.Context, call *Call) (*Outcome, error) {
	var envelope *Envelope
	var err error

	if call.Body == nil {
		envelope, err = c.gateway.Fetch(ctx, call.Suffix, call.method(), call.Service)
	} else {
		envelope, err = c.gateway.Submit(ctx, call.method(), call.Service, call.Routed, call.Body)
	}
	if err != nil {
		return nil, err
	}

	return Classify(envelope, call.handle(), c.config.PendingMarker), nil
}

// SubmitSync performs the call and, when the response is pending, waits for
// the operation to finish. If the wait fails the pending envelope is
// returned together with a pending error wrapping the cause.
func (c *Client) SubmitSync(ctx context.Context, call *Call) (*Envelope, error) {
	outcome, err := c.Submit(ctx, call)
	if err != nil {
		return nil, err
	}
	if !outcome.Pending() {
		return outcome.Envelope, nil
	}

	c.logger.Debug("awaiting pending operation", "service", call.Service, "handle", outcome.Handle)

	envelope, err := c.poller.Await(ctx, call.Service, outcome.Handle)
	if err != nil {
		return outcome.Envelope, NewError(KindPending, "await", call.Service, err)
	}

	return envelope, nil
}

// Fetch reads a resource with a plain GET on the service path plus suffix.
func (c *Client) Fetch(ctx context.Context, service string, suffix string) (*Envelope, error) {
	return c.gateway.Fetch(ctx, suffix, http.MethodGet, service)
}

func (c *Client) Await(ctx context.Context, service string, handle Handle) (*Envelope, error) {
	return c.poller.Await(ctx, service, handle)
}
