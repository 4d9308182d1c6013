package handler

import (
	"atrium/internal/discovery/models"
	"atrium/internal/upstream"
)

// OrganizationListResponse is the browsable organization list with its
// pagination state.
type OrganizationListResponse struct {
	Organizations []upstream.Organization `json:"organizations"`
	State         models.PaginationState  `json:"state"`
}

// DiscoveryStateResponse is the full workflow snapshot the UI renders from.
type DiscoveryStateResponse struct {
	Domains       []string           `json:"domains"`
	Flags         models.DomainFlags `json:"flags"`
	SelectedOrgID string             `json:"selected_organization_id,omitempty"`
	CanSubmit     bool               `json:"can_submit"`
}

// DomainResultResponse reports the outcome of staging one domain.
type DomainResultResponse struct {
	Accepted bool               `json:"accepted"`
	Domains  []string           `json:"domains"`
	Flags    models.DomainFlags `json:"flags"`
}
