package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	discoverymetrics "atrium/internal/discovery/metrics"
	"atrium/internal/discovery/models"
	"atrium/internal/notify"
	"atrium/internal/upstream"
	"atrium/pkg/debounce"
)

// Loader drives the organization list: it owns the filter text, the
// pagination cursor and the rows fetched so far. Every upstream page is
// tagged with the filter, cursor and reset generation that requested it; a
// page whose tag no longer matches the current state is dropped instead of
// applied, so a stale response can never overwrite or duplicate rows that
// belong to a newer list.
type Loader struct {
	api      API
	pageSize int
	notifier notify.Notifier
	metrics  *discoverymetrics.Metrics
	logger   *slog.Logger
	debounce *debounce.Debouncer

	mu    sync.Mutex
	state models.PaginationState
	gen   uint64
	orgs  []upstream.Organization
}

// NewLoader builds a Loader with the given debounce delay applied to
// filter edits. Explicit refreshes go through ApplyFilter, which skips
// the debounce entirely.
func NewLoader(api API, pageSize int, delay time.Duration, opts ...Option) *Loader {
	cfg := newServiceConfig(opts...)
	return &Loader{
		api:      api,
		pageSize: pageSize,
		notifier: cfg.notifier,
		metrics:  cfg.metrics,
		logger:   cfg.logger,
		debounce: debounce.New(delay),
		state:    models.PaginationState{HasMore: true},
	}
}

// SetFilter records a new filter text and schedules a refresh once the
// user pauses typing. Bursts of edits collapse to a single fetch for the
// final text.
func (l *Loader) SetFilter(ctx context.Context, text string) {
	l.debounce.Trigger(func() {
		l.ApplyFilter(ctx, text)
	})
}

// ApplyFilter resets the list for a new filter and fetches its first page
// immediately, bypassing the debounce.
func (l *Loader) ApplyFilter(ctx context.Context, text string) {
	l.mu.Lock()
	l.state = models.PaginationState{FilterText: text, HasMore: true}
	l.orgs = nil
	l.gen++
	tag := models.PageTag{Filter: text, Generation: l.gen}
	l.mu.Unlock()

	l.fetch(ctx, tag)
}

// LoadMore fetches the next page for the current filter. It is a no-op
// when the list is exhausted or a fetch is already in flight, so repeated
// scroll events cannot duplicate pages.
func (l *Loader) LoadMore(ctx context.Context) {
	l.mu.Lock()
	if !l.state.HasMore || l.state.IsFetchPending {
		l.mu.Unlock()
		return
	}
	tag := models.PageTag{Filter: l.state.FilterText, Cursor: l.state.AfterCursor, Generation: l.gen}
	l.mu.Unlock()

	l.fetch(ctx, tag)
}

func (l *Loader) fetch(ctx context.Context, tag models.PageTag) {
	l.mu.Lock()
	if !l.matchesLocked(tag) {
		l.mu.Unlock()
		return
	}
	l.state.IsFetchPending = true
	l.mu.Unlock()

	page, err := l.api.ListOrganizations(ctx, upstream.ListOrganizationsQuery{
		Filter: tag.Filter,
		After:  tag.Cursor,
		Limit:  l.pageSize,
	})

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.matchesLocked(tag) {
		// The filter or cursor moved on while this request was in
		// flight. Its rows belong to an older list and are discarded.
		if l.metrics != nil {
			l.metrics.StalePagesDropped.Inc()
		}
		l.logger.Debug("dropping stale organization page", "filter", tag.Filter, "cursor", tag.Cursor)
		return
	}
	l.state.IsFetchPending = false

	if err != nil {
		if l.metrics != nil {
			l.metrics.PageFetchErrors.Inc()
		}
		l.logger.Error("organization page fetch failed", "filter", tag.Filter, "error", err)
		if l.notifier != nil {
			l.notifier.Notify(ctx, notify.LevelError, "Organization list unavailable", err.Error())
		}
		return
	}

	l.orgs = append(l.orgs, page.Organizations...)
	l.state.AfterCursor = page.NextCursor
	l.state.HasMore = page.NextCursor != ""
	if l.metrics != nil {
		l.metrics.PagesFetched.Inc()
	}
}

// matchesLocked reports whether a tag still describes the request the
// current state is waiting for. Caller holds l.mu.
func (l *Loader) matchesLocked(tag models.PageTag) bool {
	return tag.Generation == l.gen &&
		tag.Filter == l.state.FilterText &&
		tag.Cursor == l.state.AfterCursor
}

// Organizations returns a copy of the rows fetched so far, in upstream
// order.
func (l *Loader) Organizations() []upstream.Organization {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]upstream.Organization, len(l.orgs))
	copy(out, l.orgs)
	return out
}

// State returns a snapshot of the pagination state.
func (l *Loader) State() models.PaginationState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Stop cancels any pending debounced refresh.
func (l *Loader) Stop() {
	l.debounce.Stop()
}

// Exclude filters out organizations that already appear in the
// discoverable set. The underlying rows are untouched.
func Exclude(orgs []upstream.Organization, discoverable []upstream.DiscoveryEntry) []upstream.Organization {
	hidden := make(map[string]struct{}, len(discoverable))
	for _, entry := range discoverable {
		hidden[entry.OrganizationID] = struct{}{}
	}
	out := make([]upstream.Organization, 0, len(orgs))
	for _, org := range orgs {
		if _, ok := hidden[org.ID]; ok {
			continue
		}
		out = append(out, org)
	}
	return out
}
