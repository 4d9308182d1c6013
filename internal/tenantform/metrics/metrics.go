package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TenantCreated       prometheus.Counter
	DomainChecks        *prometheus.CounterVec
	DomainCheckDuration prometheus.Histogram
	PasswordsGenerated  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		TenantCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "atrium_tenants_created_total",
			Help: "Total number of tenants created through the console",
		}),
		DomainChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "atrium_tenant_domain_checks_total",
			Help: "Tenant domain validation outcomes",
		}, []string{"outcome"}),
		DomainCheckDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "atrium_tenant_domain_check_duration_seconds",
			Help:    "Duration of tenant domain availability checks",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		PasswordsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "atrium_passwords_generated_total",
			Help: "Total number of generated tenant owner passwords",
		}),
	}
}

func (m *Metrics) IncrementTenantCreated() {
	m.TenantCreated.Inc()
}

func (m *Metrics) ObserveDomainCheck(outcome string, start time.Time) {
	m.DomainChecks.WithLabelValues(outcome).Inc()
	m.DomainCheckDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementPasswordsGenerated() {
	m.PasswordsGenerated.Inc()
}
