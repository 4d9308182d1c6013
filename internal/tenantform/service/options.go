package service

import (
	"io"
	"log/slog"

	"atrium/internal/notify"
	tenantmetrics "atrium/internal/tenantform/metrics"
)

type serviceConfig struct {
	logger       *slog.Logger
	metrics      *tenantmetrics.Metrics
	notifier     notify.Notifier
	cacheEntries int64
}

// Option configures the tenant form service.
type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

func WithMetrics(m *tenantmetrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *serviceConfig) { c.notifier = n }
}

// WithCacheEntries bounds the availability memo cache.
func WithCacheEntries(n int64) Option {
	return func(c *serviceConfig) { c.cacheEntries = n }
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
