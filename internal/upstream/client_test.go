package upstream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "atrium/pkg/domain-errors"
	"atrium/pkg/platform/circuit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, discardLogger())
}

func TestCheckTenantDomainAvailability(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tenants/domain-availability", r.URL.Path)
		assert.Equal(t, "acme.io", r.URL.Query().Get("domain"))
		_ = json.NewEncoder(w).Encode(map[string]bool{"available": true})
	})

	available, err := c.CheckTenantDomainAvailability(context.Background(), "acme.io")
	require.NoError(t, err)
	assert.True(t, available)
}

func TestListOrganizationsExtractsNextCursor(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "acme", r.URL.Query().Get("filter"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"organizations": []map[string]string{
				{"id": "org-1", "name": "Acme East"},
				{"id": "org-2", "name": "Acme West"},
			},
			"links": []map[string]string{
				{"rel": "next", "href": "/api/organizations?filter=acme&after=CURSOR1"},
			},
		})
	})

	page, err := c.ListOrganizations(context.Background(), ListOrganizationsQuery{Filter: "acme", Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Organizations, 2)
	assert.Equal(t, "org-1", page.Organizations[0].ID)
	assert.Equal(t, "CURSOR1", page.NextCursor)
}

func TestListOrganizationsSendsCursor(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "CURSOR1", r.URL.Query().Get("after"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"organizations": []map[string]string{{"id": "org-3", "name": "Acme North"}},
			"links":         []map[string]string{},
		})
	})

	page, err := c.ListOrganizations(context.Background(), ListOrganizationsQuery{After: "CURSOR1"})
	require.NoError(t, err)
	assert.Empty(t, page.NextCursor, "absent next link means exhausted")
}

func TestCreateTenant(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var req CreateTenantRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "acme.io", req.Domain)
		assert.Equal(t, "admin@acme.io", req.Owner.Email)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Tenant{ID: "t-1", Domain: req.Domain})
	})

	tenant, err := c.CreateTenant(context.Background(), &CreateTenantRequest{
		Domain:           "acme.io",
		OrganizationName: "Acme",
		Owner:            Owner{Username: "admin", Email: "admin@acme.io"},
	})
	require.NoError(t, err)
	assert.Equal(t, "t-1", tenant.ID)
}

func TestAddOrganizationEmailDomains(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/organizations/org-1/email-domains", r.URL.Path)
		var body struct {
			Domains []string `json:"domains"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"acme.io", "acme.dev"}, body.Domains)
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.AddOrganizationEmailDomains(context.Background(), "org-1", []string{"acme.io", "acme.dev"})
	require.NoError(t, err)
}

func TestStructuredErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "conflict",
			"error_description": "domain already registered",
		})
	})

	err := c.AddOrganizationEmailDomains(context.Background(), "org-1", []string{"taken.io"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Contains(t, err.Error(), "domain already registered")
}

func TestGenericErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.CheckEmailDomainAvailability(context.Background(), "acme.io")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstream))
	assert.Contains(t, err.Error(), "500")
}

func TestTransportErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, discardLogger())
	_, err := c.CheckTenantDomainAvailability(context.Background(), "acme.io")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstream))
}

func TestFetchValidationSettings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/server/validation-settings", r.URL.Path)
		_ = json.NewEncoder(w).Encode(ValidationSettings{
			TenantDomainPattern:   "^[a-z0-9.-]+$",
			MandatoryDotExtension: true,
			PasswordPolicy:        PasswordPolicy{MinLength: 10, MinUppercase: 1, MinDigits: 1},
		})
	})

	settings, err := c.FetchValidationSettings(context.Background())
	require.NoError(t, err)
	assert.True(t, settings.MandatoryDotExtension)
	assert.Equal(t, 10, settings.PasswordPolicy.MinLength)
}

func TestCircuitOpensAndFailsFast(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, discardLogger(),
		WithBreaker(circuit.New(circuit.WithFailureThreshold(2))))

	_, err := c.CheckTenantDomainAvailability(context.Background(), "acme.io")
	require.Error(t, err)
	_, err = c.CheckTenantDomainAvailability(context.Background(), "acme.io")
	require.Error(t, err)

	// Circuit is open now: the next call fails fast without a request.
	_, err = c.CheckTenantDomainAvailability(context.Background(), "acme.io")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.Equal(t, 2, hits)
}

func TestPingBypassesOpenCircuit(t *testing.T) {
	healthy := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, discardLogger(),
		WithBreaker(circuit.New(circuit.WithFailureThreshold(1), circuit.WithSuccessThreshold(1))))

	require.Error(t, c.Ping(context.Background()))

	healthy = true
	require.NoError(t, c.Ping(context.Background()))

	// The successful probe closed the circuit again.
	_, err := c.CheckTenantDomainAvailability(context.Background(), "acme.io")
	assert.False(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}
