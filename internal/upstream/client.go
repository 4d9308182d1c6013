// Package upstream is the typed HTTP client for the identity platform API.
// All console workflows reach the platform through it: availability checks,
// organization listing, tenant creation, and email-domain association.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "atrium/pkg/domain-errors"
	"atrium/pkg/platform/circuit"
	"atrium/pkg/requestcontext"
)

// Client talks to the identity platform's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	breaker    *circuit.Breaker
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Tests use this to point
// at httptest servers with short timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTracer injects a pre-configured tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithBreaker replaces the default circuit breaker, mostly to tighten
// thresholds in tests.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// NewClient creates an API client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("atrium/upstream")
	}
	if c.breaker == nil {
		c.breaker = circuit.New()
	}
	return c
}

// CheckTenantDomainAvailability reports whether a tenant domain is free.
// Transport errors are returned as errors; the caller decides (and does)
// fail closed.
func (c *Client) CheckTenantDomainAvailability(ctx context.Context, domain string) (bool, error) {
	var out struct {
		Available bool `json:"available"`
	}
	q := url.Values{"domain": {domain}}
	if err := c.get(ctx, "check_tenant_domain", "/api/tenants/domain-availability", q, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}

// CheckEmailDomainAvailability reports whether an email domain is free in
// the discovery namespace. Distinct endpoint from tenant-domain checks.
func (c *Client) CheckEmailDomainAvailability(ctx context.Context, domain string) (bool, error) {
	var out struct {
		Available bool `json:"available"`
	}
	q := url.Values{"domain": {domain}}
	if err := c.get(ctx, "check_email_domain", "/api/email-domains/availability", q, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}

// ListOrganizations returns one cursor page of organizations. The page's
// NextCursor is extracted from the response's "next" link relation.
func (c *Client) ListOrganizations(ctx context.Context, query ListOrganizationsQuery) (*OrganizationPage, error) {
	q := url.Values{}
	if query.Filter != "" {
		q.Set("filter", query.Filter)
	}
	if query.Limit > 0 {
		q.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.After != "" {
		q.Set("after", query.After)
	}

	var page OrganizationPage
	if err := c.get(ctx, "list_organizations", "/api/organizations", q, &page); err != nil {
		return nil, err
	}
	if cursor, ok := NextCursor(page.Links); ok {
		page.NextCursor = cursor
	}
	return &page, nil
}

// ListDiscoverableOrganizations returns the organizations already enabled
// for email-domain discovery.
func (c *Client) ListDiscoverableOrganizations(ctx context.Context) ([]DiscoveryEntry, error) {
	var out struct {
		Organizations []DiscoveryEntry `json:"organizations"`
	}
	if err := c.get(ctx, "list_discoverable", "/api/organizations/discoverable", nil, &out); err != nil {
		return nil, err
	}
	return out.Organizations, nil
}

// CreateTenant submits a fully validated tenant creation payload.
func (c *Client) CreateTenant(ctx context.Context, req *CreateTenantRequest) (*Tenant, error) {
	var tenant Tenant
	if err := c.post(ctx, "create_tenant", "/api/tenants", req, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// AddOrganizationEmailDomains associates validated email domains with an
// organization. No response body is consumed.
func (c *Client) AddOrganizationEmailDomains(ctx context.Context, organizationID string, domains []string) error {
	body := struct {
		Domains []string `json:"domains"`
	}{Domains: domains}
	path := "/api/organizations/" + url.PathEscape(organizationID) + "/email-domains"
	return c.post(ctx, "add_email_domains", path, body, nil)
}

// FetchValidationSettings retrieves the remote validation configuration.
// Workflows take the snapshot at start and never refetch mid-flow.
func (c *Client) FetchValidationSettings(ctx context.Context) (*ValidationSettings, error) {
	var settings ValidationSettings
	if err := c.get(ctx, "fetch_validation_settings", "/api/server/validation-settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Ping probes the API for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	return c.get(ctx, "ping", "/health", nil, &out)
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not build request")
	}
	return c.do(ctx, op, req, out)
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not encode request body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(ctx, op, req, out)
}

func (c *Client) do(ctx context.Context, op string, req *http.Request, out any) error {
	// Ping always goes through so readiness probes can close the circuit.
	if op != "ping" && c.breaker.IsOpen() {
		return dErrors.New(dErrors.CodeUnavailable, "identity api circuit open")
	}

	ctx, span := c.tracer.Start(ctx, "upstream."+op, trace.WithAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.url", req.URL.Path),
	))
	defer span.End()

	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		if c.breaker.RecordFailure() {
			c.logger.Warn("identity api circuit opened", "op", op)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return dErrors.Wrap(err, dErrors.CodeUpstream, "identity api unreachable")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusInternalServerError {
		if c.breaker.RecordFailure() {
			c.logger.Warn("identity api circuit opened", "op", op, "status", resp.StatusCode)
		}
	} else if c.breaker.RecordSuccess() {
		c.logger.Info("identity api circuit closed", "op", op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := c.decodeError(resp)
		span.SetStatus(codes.Error, "upstream error")
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return dErrors.Wrap(err, dErrors.CodeUpstream, "could not decode identity api response")
	}
	return nil
}

// errorBody is the structured error envelope the identity API returns.
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
}

// decodeError maps an upstream error response onto a domain error. A
// structured body contributes the message; otherwise a generic one is used.
func (c *Client) decodeError(resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)

	msg := body.ErrorDescription
	if msg == "" {
		msg = body.Message
	}
	if msg == "" && body.Error != "" {
		msg = body.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("identity api returned %d", resp.StatusCode)
	}

	code := dErrors.CodeUpstream
	switch resp.StatusCode {
	case http.StatusBadRequest:
		code = dErrors.CodeBadRequest
	case http.StatusUnauthorized:
		code = dErrors.CodeUnauthorized
	case http.StatusForbidden:
		code = dErrors.CodeForbidden
	case http.StatusNotFound:
		code = dErrors.CodeNotFound
	case http.StatusConflict:
		code = dErrors.CodeConflict
	}
	return dErrors.New(code, msg)
}
