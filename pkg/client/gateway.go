package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/learningorchestra/orchestra/internal/metrics"
	"github.com/learningorchestra/orchestra/internal/util"
	"github.com/learningorchestra/orchestra/internal/version"
)

//go:generate mockgen -source=gateway.go -destination=mock_gateway.go -package=client

// Gateway performs exactly one http round trip against a named microservice.
type Gateway interface {
	// Submit sends req as a json body with POST, PUT or PATCH. When routed
	// is true the path is looked up under service concatenated with the
	// request's resource name, otherwise under service alone.
	Submit(ctx context.Context, method string, service string, routed bool, req Request) (*Envelope, error)

	// Fetch sends a bodiless GET or DELETE to the service path with suffix
	// appended verbatim.
	Fetch(ctx context.Context, suffix string, method string, service string) (*Envelope, error)
}

type GatewayOption func(*HTTPGateway)

func WithHTTPClient(client *http.Client) GatewayOption {
	return func(g *HTTPGateway) {
		g.client = client
	}
}

func WithLogger(logger *slog.Logger) GatewayOption {
	return func(g *HTTPGateway) {
		g.logger = logger
	}
}

type HTTPGateway struct {
	config  *Config
	client  *http.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewGateway(config *Config, metrics *metrics.Metrics, opts ...GatewayOption) (*HTTPGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := checkToken(config.Token, time.Now()); err != nil {
		return nil, err
	}
	util.Assert(metrics != nil, "metrics must not be nil")

	g := &HTTPGateway{
		config: config,
		client: &http.Client{
			Timeout: config.RequestTimeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: config.ConnTimeout,
				}).DialContext,
			},
		},
		metrics: metrics,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *HTTPGateway) Submit(ctx context.Context, method string, service string, routed bool, req Request) (*Envelope, error) {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return nil, NewError(KindInvalid, "submit", service, fmt.Errorf("method %s cannot carry a body", method))
	}
	if req == nil {
		return nil, NewError(KindInvalid, "submit", service, fmt.Errorf("request must not be nil"))
	}

	key := service
	if routed {
		name := req.Name()
		if name == "" {
			return nil, NewError(KindInvalid, "submit", service, fmt.Errorf("routed request has no %s", RouteKey))
		}
		key = service + name
	}

	route, err := g.config.Route(key)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, NewError(KindInvalid, "submit", service, err)
	}

	return g.do(ctx, "submit", method, service, util.JoinURL(g.config.Address, route), body)
}

func (g *HTTPGateway) Fetch(ctx context.Context, suffix string, method string, service string) (*Envelope, error) {
	switch method {
	case http.MethodGet, http.MethodDelete:
	default:
		return nil, NewError(KindInvalid, "fetch", service, fmt.Errorf("method %s requires a body", method))
	}

	route, err := g.config.Route(service)
	if err != nil {
		return nil, err
	}

	return g.do(ctx, "fetch", method, service, util.JoinURL(g.config.Address, route)+suffix, nil)
}

func (g *HTTPGateway) do(ctx context.Context, op string, method string, service string, url string, body []byte) (*Envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, NewError(KindConfiguration, op, service, err)
	}

	id := uuid.NewString()

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Charset", "utf-8")
	req.Header.Set("X-Request-Id", id)
	req.Header.Set("User-Agent", version.UserAgent())
	if g.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.config.Token)
	}

	inFlight := g.metrics.GatewayInFlight.WithLabelValues(service)
	inFlight.Inc()
	defer inFlight.Dec()

	g.logger.Debug("sending request", "id", id, "service", service, "method", method, "url", url)

	res, err := g.client.Do(req)
	if err != nil {
		g.metrics.GatewayTotal.WithLabelValues(service, method, "error").Inc()
		g.logger.Warn("request failed", "id", id, "service", service, "err", err)
		return nil, NewError(KindTransport, op, service, err)
	}
	defer util.DeferAndLog(res.Body.Close)

	g.metrics.GatewayTotal.WithLabelValues(service, method, strconv.Itoa(res.StatusCode)).Inc()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, NewError(KindTransport, op, service, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		g.logger.Warn("unexpected status", "id", id, "service", service, "status", res.StatusCode)
		return nil, &Error{
			Kind:       KindTransport,
			Op:         op,
			Service:    service,
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("%s", bytes.TrimSpace(data)),
		}
	}

	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, NewError(KindProtocol, op, service, fmt.Errorf("response is not a json object: %w", err))
	}

	g.logger.Debug("received response", "id", id, "service", service, "status", res.StatusCode)
	return &envelope, nil
}

// checkToken rejects a bearer token that is a jwt past its expiry. Opaque
// tokens are passed through untouched.
func checkToken(token string, now time.Time) error {
	if token == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return NewError(KindConfiguration, "token", "", err)
	}
	if exp != nil && exp.Before(now) {
		return NewError(KindConfiguration, "token", "", fmt.Errorf("token expired at %s", exp.Format(time.RFC3339)))
	}

	return nil
}
