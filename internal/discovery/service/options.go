package service

import (
	"io"
	"log/slog"

	discoverymetrics "atrium/internal/discovery/metrics"
	"atrium/internal/notify"
)

type serviceConfig struct {
	logger   *slog.Logger
	metrics  *discoverymetrics.Metrics
	notifier notify.Notifier
}

// Option configures the discovery loader and assigner.
type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

func WithMetrics(m *discoverymetrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *serviceConfig) { c.notifier = n }
}

func newServiceConfig(opts ...Option) serviceConfig {
	cfg := serviceConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
