package handler

import (
	"atrium/internal/tenantform/models"
	s "atrium/pkg/string"
	"atrium/pkg/validation"
)

// OwnerPayload is the admin identity portion of a tenant creation request.
type OwnerPayload struct {
	Username           string `json:"username" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	FirstName          string `json:"firstname" validate:"required"`
	LastName           string `json:"lastname" validate:"required"`
	Password           string `json:"password" validate:"required"`
	ProvisioningMethod string `json:"provisioning_method"`
}

// CreateTenantRequest is the console's tenant creation body. The workflow
// service re-runs the full field pipeline on submit; these tags catch
// structurally broken requests before the workflow starts.
type CreateTenantRequest struct {
	Domain           string       `json:"domain" validate:"required"`
	OrganizationName string       `json:"organization_name"`
	Owner            OwnerPayload `json:"owner"`
}

func (r *CreateTenantRequest) Sanitize() {
	s.TrimStrings(&r.Domain, &r.OrganizationName,
		&r.Owner.Username, &r.Owner.Email, &r.Owner.FirstName, &r.Owner.LastName)
}

func (r *CreateTenantRequest) Normalize() {
	r.Domain = s.NormalizeDomain(r.Domain)
}

func (r *CreateTenantRequest) Validate() error {
	return validation.Validate(r)
}

// ToInput converts the request into the workflow's form state.
func (r *CreateTenantRequest) ToInput() models.FormInput {
	return models.FormInput{
		Domain:             r.Domain,
		OrganizationName:   r.OrganizationName,
		Username:           r.Owner.Username,
		Email:              r.Owner.Email,
		FirstName:          r.Owner.FirstName,
		LastName:           r.Owner.LastName,
		Password:           r.Owner.Password,
		ProvisioningMethod: r.Owner.ProvisioningMethod,
	}
}
