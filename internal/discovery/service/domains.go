package service

import (
	"context"
	"log/slog"
	"sync"

	discoverymetrics "atrium/internal/discovery/metrics"
	"atrium/internal/discovery/models"
	s "atrium/pkg/string"
	"atrium/pkg/validation"
)

// DomainSet holds the email domains staged for the selected organization.
// Add is optimistic: the domain is appended first, then validated, and
// popped again with the matching flag raised when a check fails. The flags
// describe only the most recent attempt and clear on the next input edit.
type DomainSet struct {
	check   func(ctx context.Context, domain string) (bool, error)
	metrics *discoverymetrics.Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	domains []string
	flags   models.DomainFlags
}

// NewDomainSet builds a set whose availability check is usually the
// identity API's email-domain endpoint.
func NewDomainSet(check func(ctx context.Context, domain string) (bool, error), opts ...Option) *DomainSet {
	cfg := newServiceConfig(opts...)
	return &DomainSet{
		check:   check,
		metrics: cfg.metrics,
		logger:  cfg.logger,
	}
}

// Add stages a domain. The entry shows up in the list immediately; if the
// format check or the remote availability check rejects it, the entry is
// removed again and the corresponding flag is set. Only the newly added
// domain is ever checked, existing entries are not revalidated.
func (d *DomainSet) Add(ctx context.Context, raw string) bool {
	domain := s.NormalizeDomain(raw)

	d.mu.Lock()
	d.flags = models.DomainFlags{}
	if domain == "" || d.contains(domain) {
		d.mu.Unlock()
		return false
	}
	d.domains = append(d.domains, domain)
	d.mu.Unlock()

	if !validation.IsFQDN(domain) {
		d.rollback(domain, models.DomainFlags{FormatError: true}, "format")
		return false
	}

	available, err := d.check(ctx, domain)
	if err != nil {
		// Fail closed: an unreachable check counts as unavailable.
		d.logger.Warn("email domain availability check failed", "domain", domain, "error", err)
		d.rollback(domain, models.DomainFlags{AvailabilityError: true}, "availability")
		return false
	}
	if !available {
		d.rollback(domain, models.DomainFlags{AvailabilityError: true}, "availability")
		return false
	}
	return true
}

func (d *DomainSet) rollback(domain string, flags models.DomainFlags, check string) {
	d.mu.Lock()
	for i := len(d.domains) - 1; i >= 0; i-- {
		if d.domains[i] == domain {
			d.domains = append(d.domains[:i], d.domains[i+1:]...)
			break
		}
	}
	d.flags = flags
	d.mu.Unlock()

	if d.metrics != nil {
		d.metrics.DomainRejections.WithLabelValues(check).Inc()
	}
}

// InputChanged clears both error flags. The UI calls this on every edit of
// the domain input so stale errors do not linger.
func (d *DomainSet) InputChanged() {
	d.mu.Lock()
	d.flags = models.DomainFlags{}
	d.mu.Unlock()
}

// Remove drops a staged domain. Removing is purely local, nothing is
// checked remotely.
func (d *DomainSet) Remove(domain string) {
	normalized := s.NormalizeDomain(domain)
	d.mu.Lock()
	for i, staged := range d.domains {
		if staged == normalized {
			d.domains = append(d.domains[:i], d.domains[i+1:]...)
			break
		}
	}
	d.mu.Unlock()
}

// Domains returns a copy of the staged domains in insertion order.
func (d *DomainSet) Domains() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.domains))
	copy(out, d.domains)
	return out
}

// Flags returns the current inline error flags.
func (d *DomainSet) Flags() models.DomainFlags {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flags
}

// Clear drops all staged domains and flags, typically after a successful
// submission.
func (d *DomainSet) Clear() {
	d.mu.Lock()
	d.domains = nil
	d.flags = models.DomainFlags{}
	d.mu.Unlock()
}

// contains expects d.mu to be held.
func (d *DomainSet) contains(domain string) bool {
	for _, staged := range d.domains {
		if staged == domain {
			return true
		}
	}
	return false
}
