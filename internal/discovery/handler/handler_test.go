package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atrium/internal/discovery/service"
	"atrium/internal/upstream"
)

// fakeIdentityAPI is a minimal in-memory identity platform for handler
// tests. It serves one page of organizations and accepts every domain.
type fakeIdentityAPI struct {
	organizations []upstream.Organization
	discoverable  []upstream.DiscoveryEntry
	available     bool
	attachErr     error

	attachedTo      string
	attachedDomains []string
}

func (f *fakeIdentityAPI) ListOrganizations(ctx context.Context, query upstream.ListOrganizationsQuery) (*upstream.OrganizationPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &upstream.OrganizationPage{Organizations: f.organizations}, nil
}

func (f *fakeIdentityAPI) ListDiscoverableOrganizations(ctx context.Context) ([]upstream.DiscoveryEntry, error) {
	return f.discoverable, nil
}

func (f *fakeIdentityAPI) CheckEmailDomainAvailability(ctx context.Context, domain string) (bool, error) {
	return f.available, nil
}

func (f *fakeIdentityAPI) AddOrganizationEmailDomains(ctx context.Context, organizationID string, domains []string) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.attachedTo = organizationID
	f.attachedDomains = domains
	return nil
}

func newTestRouter(t *testing.T, api *fakeIdentityAPI) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(func() (*service.Assigner, error) {
		return service.NewAssigner(api, 10, 0)
	}, &upstream.ValidationSettings{EmailDomainsEnabled: true}, logger)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleAddDomainAccepted(t *testing.T) {
	api := &fakeIdentityAPI{available: true}
	router := newTestRouter(t, api)

	rec := postJSON(t, router, "/console/discovery/domains", map[string]string{"domain": "ACME.io"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DomainResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Accepted)
	assert.Equal(t, []string{"acme.io"}, resp.Domains)
	assert.False(t, resp.Flags.FormatError)
}

func TestHandleAddDomainMalformed(t *testing.T) {
	api := &fakeIdentityAPI{available: true}
	router := newTestRouter(t, api)

	rec := postJSON(t, router, "/console/discovery/domains", map[string]string{"domain": "not-a-domain"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp DomainResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Accepted)
	assert.Empty(t, resp.Domains)
	assert.True(t, resp.Flags.FormatError)
	assert.False(t, resp.Flags.AvailabilityError)
}

func TestHandleAddDomainUnavailable(t *testing.T) {
	api := &fakeIdentityAPI{available: false}
	router := newTestRouter(t, api)

	rec := postJSON(t, router, "/console/discovery/domains", map[string]string{"domain": "taken.io"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp DomainResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Flags.AvailabilityError)
}

func TestHandleListOrganizationsHidesDiscoverable(t *testing.T) {
	api := &fakeIdentityAPI{
		organizations: []upstream.Organization{{ID: "org-1"}, {ID: "org-2"}},
		discoverable:  []upstream.DiscoveryEntry{{OrganizationID: "org-2"}},
	}
	router := newTestRouter(t, api)

	// Load the first page, then refresh state through the workflow.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/console/organizations?more=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp OrganizationListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Organizations, 1)
	assert.Equal(t, "org-1", resp.Organizations[0].ID)
}

func TestHandleSetFilterOutlivesRequest(t *testing.T) {
	api := &fakeIdentityAPI{organizations: []upstream.Organization{{ID: "org-1"}}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(func() (*service.Assigner, error) {
		return service.NewAssigner(api, 10, 20*time.Millisecond)
	}, &upstream.ValidationSettings{EmailDomainsEnabled: true}, logger)
	router := chi.NewRouter()
	h.Register(router)

	// The debounced fetch fires after the handler has already written 202
	// and net/http has cancelled the request context. The fetch must still
	// succeed, so issue the filter with a context that dies the moment
	// ServeHTTP returns.
	payload, err := json.Marshal(map[string]string{"filter": "org"})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/console/organizations/filter", bytes.NewReader(payload))
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	cancel()
	require.Equal(t, http.StatusAccepted, rec.Code)

	deadline := time.After(time.Second)
	for {
		listRec := httptest.NewRecorder()
		router.ServeHTTP(listRec, httptest.NewRequest(http.MethodGet, "/console/organizations", nil))
		require.Equal(t, http.StatusOK, listRec.Code)

		var resp OrganizationListResponse
		require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &resp))
		if len(resp.Organizations) == 1 && resp.Organizations[0].ID == "org-1" {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("filtered rows never loaded, got %v", resp.Organizations)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestHandleSubmitFlow(t *testing.T) {
	api := &fakeIdentityAPI{available: true}
	router := newTestRouter(t, api)

	require.Equal(t, http.StatusOK,
		postJSON(t, router, "/console/discovery/domains", map[string]string{"domain": "acme.io"}).Code)
	require.Equal(t, http.StatusNoContent,
		postJSON(t, router, "/console/discovery/selection", map[string]string{"organization_id": "org-1"}).Code)

	rec := postJSON(t, router, "/console/discovery/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "org-1", api.attachedTo)
	assert.Equal(t, []string{"acme.io"}, api.attachedDomains)

	var resp DiscoveryStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Domains)
	assert.Empty(t, resp.SelectedOrgID)
	assert.False(t, resp.CanSubmit)
}

func TestHandleSubmitWithoutSelection(t *testing.T) {
	api := &fakeIdentityAPI{available: true}
	router := newTestRouter(t, api)

	require.Equal(t, http.StatusOK,
		postJSON(t, router, "/console/discovery/domains", map[string]string{"domain": "acme.io"}).Code)

	rec := postJSON(t, router, "/console/discovery/submit", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAttachDomainsOneShot(t *testing.T) {
	api := &fakeIdentityAPI{available: true}
	router := newTestRouter(t, api)

	rec := postJSON(t, router, "/console/organizations/org-9/email-domains",
		map[string]any{"domains": []string{"acme.io", "nova.dev"}})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "org-9", api.attachedTo)
	assert.Equal(t, []string{"acme.io", "nova.dev"}, api.attachedDomains)
}

func TestHandleAttachDomainsRejectsBadDomain(t *testing.T) {
	api := &fakeIdentityAPI{available: true}
	router := newTestRouter(t, api)

	rec := postJSON(t, router, "/console/organizations/org-9/email-domains",
		map[string]any{"domains": []string{"not-a-domain"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, api.attachedTo)
}

func TestHandleListDiscoverable(t *testing.T) {
	api := &fakeIdentityAPI{discoverable: []upstream.DiscoveryEntry{{OrganizationID: "org-2", OrganizationName: "Acme"}}}
	router := newTestRouter(t, api)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/console/organizations/discoverable", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []upstream.DiscoveryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "org-2", entries[0].OrganizationID)
}

func TestDomainRoutesRefusedWhenDiscoveryDisabled(t *testing.T) {
	api := &fakeIdentityAPI{available: true}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(func() (*service.Assigner, error) {
		return service.NewAssigner(api, 10, 0)
	}, &upstream.ValidationSettings{EmailDomainsEnabled: false}, logger)
	router := chi.NewRouter()
	h.Register(router)

	assert.Equal(t, http.StatusForbidden,
		postJSON(t, router, "/console/discovery/domains", map[string]string{"domain": "acme.io"}).Code)
	assert.Equal(t, http.StatusForbidden,
		postJSON(t, router, "/console/discovery/submit", nil).Code)
	assert.Equal(t, http.StatusForbidden,
		postJSON(t, router, "/console/organizations/org-9/email-domains",
			map[string]any{"domains": []string{"acme.io"}}).Code)
	assert.Empty(t, api.attachedTo)

	// Read-only routes stay open so the console can still browse.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/console/organizations", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionsAreIsolated(t *testing.T) {
	api := &fakeIdentityAPI{available: true}
	router := newTestRouter(t, api)

	payload, err := json.Marshal(map[string]string{"domain": "acme.io"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/console/discovery/domains", bytes.NewReader(payload))
	req.Header.Set("X-Console-Session", "operator-a")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// A different session sees an empty staging set.
	stateReq := httptest.NewRequest(http.MethodGet, "/console/discovery", nil)
	stateReq.Header.Set("X-Console-Session", "operator-b")
	stateRec := httptest.NewRecorder()
	router.ServeHTTP(stateRec, stateReq)
	require.Equal(t, http.StatusOK, stateRec.Code)

	var resp DiscoveryStateResponse
	require.NoError(t, json.Unmarshal(stateRec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Domains)
}
