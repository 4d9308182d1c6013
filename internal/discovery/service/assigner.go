package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	discoverymetrics "atrium/internal/discovery/metrics"
	"atrium/internal/notify"
	"atrium/internal/upstream"
	dErrors "atrium/pkg/domain-errors"
)

// Assigner is the organization discovery workflow: browse organizations,
// stage email domains, pick a target organization and attach the domains
// to it. One Assigner corresponds to one console session.
type Assigner struct {
	api      API
	loader   *Loader
	domains  *DomainSet
	notifier notify.Notifier
	metrics  *discoverymetrics.Metrics
	logger   *slog.Logger

	inFlight atomic.Bool

	mu           sync.Mutex
	selected     string
	discoverable []upstream.DiscoveryEntry
}

// NewAssigner wires the workflow. pageSize and debounceDelay feed the
// embedded organization loader.
func NewAssigner(api API, pageSize int, debounceDelay time.Duration, opts ...Option) (*Assigner, error) {
	if api == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "assigner requires an identity API client")
	}
	cfg := newServiceConfig(opts...)
	return &Assigner{
		api:      api,
		loader:   NewLoader(api, pageSize, debounceDelay, opts...),
		domains:  NewDomainSet(api.CheckEmailDomainAvailability, opts...),
		notifier: cfg.notifier,
		metrics:  cfg.metrics,
		logger:   cfg.logger,
	}, nil
}

// Loader exposes the organization list state machine.
func (a *Assigner) Loader() *Loader { return a.loader }

// Domains exposes the staged email-domain set.
func (a *Assigner) Domains() *DomainSet { return a.domains }

// SelectOrganization records the submit target. Selecting an empty id
// clears the selection.
func (a *Assigner) SelectOrganization(id string) {
	a.mu.Lock()
	a.selected = id
	a.mu.Unlock()
}

// Selected returns the currently selected organization id, empty when
// nothing is selected.
func (a *Assigner) Selected() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected
}

// RefreshDiscoverable reloads the set of organizations that already have
// discovery configured. Visible uses it to hide them from the picker.
func (a *Assigner) RefreshDiscoverable(ctx context.Context) error {
	entries, err := a.api.ListDiscoverableOrganizations(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstream, "listing discoverable organizations")
	}
	a.mu.Lock()
	a.discoverable = entries
	a.mu.Unlock()
	return nil
}

// Discoverable returns the cached discoverable entries.
func (a *Assigner) Discoverable() []upstream.DiscoveryEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]upstream.DiscoveryEntry, len(a.discoverable))
	copy(out, a.discoverable)
	return out
}

// Visible returns the loaded organizations minus the ones already
// discoverable. The loader's rows are left intact, the filtering is purely
// presentational.
func (a *Assigner) Visible() []upstream.Organization {
	a.mu.Lock()
	discoverable := a.discoverable
	a.mu.Unlock()
	return Exclude(a.loader.Organizations(), discoverable)
}

// CanSubmit reports whether a submission would be accepted right now: at
// least one staged domain, an organization selected and no submission
// already running.
func (a *Assigner) CanSubmit() bool {
	if a.inFlight.Load() {
		return false
	}
	a.mu.Lock()
	selected := a.selected
	a.mu.Unlock()
	return selected != "" && len(a.domains.Domains()) > 0
}

// Submit attaches the staged domains to the selected organization. A
// second Submit while one is running is rejected immediately; the guard is
// released whatever the outcome. On success the staged set is cleared and
// the discoverable list refreshed so the organization disappears from the
// picker.
func (a *Assigner) Submit(ctx context.Context) error {
	if !a.inFlight.CompareAndSwap(false, true) {
		return dErrors.New(dErrors.CodeConflict, "a submission is already in progress")
	}
	defer a.inFlight.Store(false)

	a.mu.Lock()
	selected := a.selected
	a.mu.Unlock()
	domains := a.domains.Domains()

	if selected == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "no organization selected")
	}
	if len(domains) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "no email domains staged")
	}

	if err := a.api.AddOrganizationEmailDomains(ctx, selected, domains); err != nil {
		a.logger.Error("attaching email domains failed",
			"organization_id", selected,
			"domains", len(domains),
			"error", err,
		)
		if a.notifier != nil {
			a.notifier.Notify(ctx, notify.LevelError, "Could not enable discovery", err.Error())
		}
		return dErrors.Wrap(err, dErrors.CodeUpstream, "attaching email domains")
	}

	if a.metrics != nil {
		a.metrics.DomainsAttached.Add(float64(len(domains)))
	}
	if a.notifier != nil {
		a.notifier.Notify(ctx, notify.LevelSuccess, "Discovery enabled",
			fmt.Sprintf("%d email domain(s) attached", len(domains)))
	}

	a.domains.Clear()
	a.mu.Lock()
	a.selected = ""
	a.mu.Unlock()

	if err := a.RefreshDiscoverable(ctx); err != nil {
		// The attachment itself succeeded; a failed refresh only delays
		// hiding the organization from the picker.
		a.logger.Warn("refreshing discoverable organizations failed", "error", err)
	}
	return nil
}
