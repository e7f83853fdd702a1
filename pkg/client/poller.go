package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/learningorchestra/orchestra/internal/metrics"
	"github.com/learningorchestra/orchestra/internal/util"
)

// SleepFunc blocks for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type PollerOption func(*Poller)

func WithSleep(f SleepFunc) PollerOption {
	return func(p *Poller) {
		p.sleep = f
	}
}

func WithPollerLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// Poller waits for a pending operation by fetching its status at a fixed
// interval until the first status record reports finished.
type Poller struct {
	gateway Gateway
	config  *Config
	metrics *metrics.Metrics
	sleep   SleepFunc
	logger  *slog.Logger
}

func NewPoller(gateway Gateway, config *Config, metrics *metrics.Metrics, opts ...PollerOption) *Poller {
	util.Assert(gateway != nil, "gateway must not be nil")
	util.Assert(config != nil, "config must not be nil")
	util.Assert(metrics != nil, "metrics must not be nil")

	p := &Poller{
		gateway: gateway,
		config:  config,
		metrics: metrics,
		sleep:   sleep,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Await returns the envelope of the first poll whose first record is
// finished. Any fetch or decode failure ends the wait immediately; so does
// ctx, or the configured poll timeout.
func (p *Poller) Await(ctx context.Context, service string, handle Handle) (*Envelope, error) {
	if p.config.PollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.PollTimeout)
		defer cancel()
	}

	inFlight := p.metrics.PollInFlight.WithLabelValues(service)
	inFlight.Inc()
	defer inFlight.Dec()

	envelope, err := p.await(ctx, service, handle)

	switch {
	case err == nil:
		p.metrics.PollTotal.WithLabelValues(service, "finished").Inc()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		p.metrics.PollTotal.WithLabelValues(service, "canceled").Inc()
	default:
		p.metrics.PollTotal.WithLabelValues(service, "failed").Inc()
	}

	return envelope, err
}

func (p *Poller) await(ctx context.Context, service string, handle Handle) (*Envelope, error) {
	suffix := handle.String() + p.config.StatusSuffix

	for attempt := 1; ; attempt++ {
		if err := p.sleep(ctx, p.config.PollInterval); err != nil {
			return nil, fmt.Errorf("await %s: %w", handle, err)
		}

		p.metrics.PollAttempts.WithLabelValues(service).Inc()

		envelope, err := p.gateway.Fetch(ctx, suffix, http.MethodGet, service)
		if err != nil {
			return nil, err
		}

		records, err := envelope.Records()
		if err != nil {
			return nil, NewError(KindProtocol, "await", service, err)
		}
		if len(records) == 0 {
			return nil, NewError(KindProtocol, "await", service, fmt.Errorf("no status record for %s", handle))
		}
		if len(records) > 1 {
			p.logger.Debug("status returned more than one record, using the first", "service", service, "handle", handle, "records", len(records))
		}

		if records[0].Finished.True() {
			p.logger.Debug("operation finished", "service", service, "handle", handle, "attempts", attempt)
			return envelope, nil
		}
	}
}
