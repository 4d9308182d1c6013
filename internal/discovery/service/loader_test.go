package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"atrium/internal/upstream"
)

// pagingAPI serves canned organization pages keyed by filter and cursor and
// records every query it receives.
type pagingAPI struct {
	mu      sync.Mutex
	pages   map[string]*upstream.OrganizationPage
	queries []upstream.ListOrganizationsQuery
	listErr error

	// gate, when set, blocks ListOrganizations until released. started is
	// closed once the call is inside the method.
	gate    chan struct{}
	started chan struct{}
}

func pageKey(filter, after string) string { return filter + "|" + after }

func (p *pagingAPI) ListOrganizations(ctx context.Context, query upstream.ListOrganizationsQuery) (*upstream.OrganizationPage, error) {
	p.mu.Lock()
	p.queries = append(p.queries, query)
	gate, started := p.gate, p.started
	p.gate, p.started = nil, nil
	p.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		<-gate
	}
	if p.listErr != nil {
		return nil, p.listErr
	}
	page, ok := p.pages[pageKey(query.Filter, query.After)]
	if !ok {
		return &upstream.OrganizationPage{}, nil
	}
	return page, nil
}

func (p *pagingAPI) ListDiscoverableOrganizations(ctx context.Context) ([]upstream.DiscoveryEntry, error) {
	return nil, nil
}

func (p *pagingAPI) CheckEmailDomainAvailability(ctx context.Context, domain string) (bool, error) {
	return true, nil
}

func (p *pagingAPI) AddOrganizationEmailDomains(ctx context.Context, organizationID string, domains []string) error {
	return nil
}

func orgs(ids ...string) []upstream.Organization {
	out := make([]upstream.Organization, len(ids))
	for i, id := range ids {
		out[i] = upstream.Organization{ID: id, Name: "org " + id}
	}
	return out
}

func TestLoaderPassesCursorToNextPage(t *testing.T) {
	api := &pagingAPI{pages: map[string]*upstream.OrganizationPage{
		pageKey("acme", ""):        {Organizations: orgs("o1", "o2"), NextCursor: "CURSOR1"},
		pageKey("acme", "CURSOR1"): {Organizations: orgs("o3")},
	}}
	loader := NewLoader(api, 2, 0)

	loader.ApplyFilter(context.Background(), "acme")
	loader.LoadMore(context.Background())

	if len(api.queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(api.queries))
	}
	if api.queries[1].After != "CURSOR1" {
		t.Fatalf("second page must carry the cursor from the first, got %q", api.queries[1].After)
	}

	got := loader.Organizations()
	want := []string{"o1", "o2", "o3"}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("row %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
	if state := loader.State(); state.HasMore {
		t.Fatalf("list with no next link must be exhausted")
	}
}

func TestLoaderLoadMoreNoOpWhenExhausted(t *testing.T) {
	api := &pagingAPI{pages: map[string]*upstream.OrganizationPage{
		pageKey("", ""): {Organizations: orgs("o1")},
	}}
	loader := NewLoader(api, 10, 0)

	loader.ApplyFilter(context.Background(), "")
	loader.LoadMore(context.Background())
	loader.LoadMore(context.Background())

	if len(api.queries) != 1 {
		t.Fatalf("exhausted list must not refetch, got %d queries", len(api.queries))
	}
}

func TestLoaderDropsPageFromSupersededFilter(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &pagingAPI{
		pages: map[string]*upstream.OrganizationPage{
			pageKey("acme", ""): {Organizations: orgs("stale1", "stale2")},
			pageKey("nova", ""): {Organizations: orgs("fresh1")},
		},
		gate:    release,
		started: started,
	}
	loader := NewLoader(api, 10, 0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loader.ApplyFilter(context.Background(), "acme")
	}()
	<-started

	// The user changed the filter while the first page was still in
	// flight. The new fetch completes first; the old page must be dropped
	// when it finally lands.
	loader.ApplyFilter(context.Background(), "nova")
	close(release)
	wg.Wait()

	got := loader.Organizations()
	if len(got) != 1 || got[0].ID != "fresh1" {
		t.Fatalf("only the new filter's rows may show, got %v", got)
	}
	if state := loader.State(); state.FilterText != "nova" {
		t.Fatalf("expected filter nova, got %q", state.FilterText)
	}
}

func TestLoaderDropsPageFromSupersededReset(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &pagingAPI{
		pages: map[string]*upstream.OrganizationPage{
			pageKey("acme", ""): {Organizations: orgs("o1", "o2")},
		},
		gate:    release,
		started: started,
	}
	loader := NewLoader(api, 10, 0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loader.ApplyFilter(context.Background(), "acme")
	}()
	<-started

	// The same filter was applied again while its first page was still in
	// flight. Both fetches carry identical filter and cursor, so only the
	// reset generation distinguishes them; the superseded page must be
	// dropped or every row would appear twice.
	loader.ApplyFilter(context.Background(), "acme")
	close(release)
	wg.Wait()

	got := loader.Organizations()
	if len(got) != 2 {
		t.Fatalf("superseded page must not duplicate rows, got %v", got)
	}
	if got[0].ID != "o1" || got[1].ID != "o2" {
		t.Fatalf("expected o1 and o2, got %v", got)
	}
}

func TestLoaderErrorLeavesRowsIntact(t *testing.T) {
	api := &pagingAPI{pages: map[string]*upstream.OrganizationPage{
		pageKey("acme", ""): {Organizations: orgs("o1"), NextCursor: "CURSOR1"},
	}}
	loader := NewLoader(api, 10, 0)
	loader.ApplyFilter(context.Background(), "acme")

	api.listErr = errors.New("identity api down")
	loader.LoadMore(context.Background())

	got := loader.Organizations()
	if len(got) != 1 || got[0].ID != "o1" {
		t.Fatalf("failed page must not disturb existing rows, got %v", got)
	}
	state := loader.State()
	if !state.HasMore || state.IsFetchPending {
		t.Fatalf("after a failed fetch the loader must be idle and retryable, got %+v", state)
	}
	if state.AfterCursor != "CURSOR1" {
		t.Fatalf("cursor must survive a failed fetch, got %q", state.AfterCursor)
	}
}

func TestLoaderDebounceCollapsesFilterBursts(t *testing.T) {
	api := &pagingAPI{pages: map[string]*upstream.OrganizationPage{
		pageKey("nova", ""): {Organizations: orgs("fresh1")},
	}}
	loader := NewLoader(api, 10, 20*time.Millisecond)
	defer loader.Stop()

	loader.SetFilter(context.Background(), "n")
	loader.SetFilter(context.Background(), "no")
	loader.SetFilter(context.Background(), "nova")

	deadline := time.After(time.Second)
	for {
		api.mu.Lock()
		queries := len(api.queries)
		api.mu.Unlock()
		if queries > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("debounced fetch never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.queries) != 1 {
		t.Fatalf("burst of edits must collapse to one fetch, got %d", len(api.queries))
	}
	if api.queries[0].Filter != "nova" {
		t.Fatalf("only the final filter text may be fetched, got %q", api.queries[0].Filter)
	}
}

func TestExcludeHidesDiscoverableOrganizations(t *testing.T) {
	visible := Exclude(orgs("o1", "o2", "o3"), []upstream.DiscoveryEntry{
		{OrganizationID: "o2"},
	})
	if len(visible) != 2 || visible[0].ID != "o1" || visible[1].ID != "o3" {
		t.Fatalf("expected o1 and o3, got %v", visible)
	}
}
