package handler

import (
	s "atrium/pkg/string"
	"atrium/pkg/validation"
)

// AddDomainRequest stages one email domain for the selected organization.
type AddDomainRequest struct {
	Domain string `json:"domain" validate:"required"`
}

func (r *AddDomainRequest) Sanitize() {
	s.TrimStrings(&r.Domain)
}

func (r *AddDomainRequest) Normalize() {
	r.Domain = s.NormalizeDomain(r.Domain)
}

func (r *AddDomainRequest) Validate() error {
	return validation.Validate(r)
}

// AttachDomainsRequest is the one-shot attach body.
type AttachDomainsRequest struct {
	Domains []string `json:"domains" validate:"required,min=1"`
}

func (r *AttachDomainsRequest) Sanitize() {
	s.TrimSlice(r.Domains)
}

func (r *AttachDomainsRequest) Validate() error {
	return validation.Validate(r)
}

// SelectOrganizationRequest picks the submit target. An empty id clears the
// selection.
type SelectOrganizationRequest struct {
	OrganizationID string `json:"organization_id"`
}

func (r *SelectOrganizationRequest) Sanitize() {
	s.TrimStrings(&r.OrganizationID)
}

// FilterRequest updates the organization list filter text.
type FilterRequest struct {
	Filter string `json:"filter"`
}

func (r *FilterRequest) Sanitize() {
	s.TrimStrings(&r.Filter)
}
