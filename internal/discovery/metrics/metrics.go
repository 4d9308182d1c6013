package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PagesFetched      prometheus.Counter
	PageFetchErrors   prometheus.Counter
	StalePagesDropped prometheus.Counter
	DomainsAttached   prometheus.Counter
	DomainRejections  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		PagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "atrium_discovery_pages_fetched_total",
			Help: "Organization pages fetched from the identity API",
		}),
		PageFetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "atrium_discovery_page_fetch_errors_total",
			Help: "Organization page fetches that failed",
		}),
		StalePagesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "atrium_discovery_stale_pages_dropped_total",
			Help: "Pages dropped because their request tag no longer matched loader state",
		}),
		DomainsAttached: promauto.NewCounter(prometheus.CounterOpts{
			Name: "atrium_discovery_domains_attached_total",
			Help: "Email domains successfully associated with organizations",
		}),
		DomainRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "atrium_discovery_domain_rejections_total",
			Help: "Email domain insertions rolled back, by failing check",
		}, []string{"check"}),
	}
}
