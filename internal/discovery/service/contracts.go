package service

//go:generate mockgen -source=contracts.go -destination=mocks/mocks.go -package=mocks API

import (
	"context"

	"atrium/internal/upstream"
)

// API is the identity platform surface the discovery assigner depends on.
type API interface {
	ListOrganizations(ctx context.Context, query upstream.ListOrganizationsQuery) (*upstream.OrganizationPage, error)
	ListDiscoverableOrganizations(ctx context.Context) ([]upstream.DiscoveryEntry, error)
	CheckEmailDomainAvailability(ctx context.Context, domain string) (bool, error)
	AddOrganizationEmailDomains(ctx context.Context, organizationID string, domains []string) error
}
