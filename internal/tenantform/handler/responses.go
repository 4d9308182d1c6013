package handler

import "atrium/internal/upstream"

// TenantResponse is returned after a successful tenant creation.
type TenantResponse struct {
	ID     string `json:"id"`
	Domain string `json:"domain"`
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

func toTenantResponse(t *upstream.Tenant) TenantResponse {
	return TenantResponse{
		ID:     t.ID,
		Domain: t.Domain,
		Name:   t.Name,
		Status: t.Status,
	}
}

// AvailabilityResponse reports a domain availability verdict.
type AvailabilityResponse struct {
	Domain    string `json:"domain"`
	Available bool   `json:"available"`
}

// GeneratedPasswordResponse carries a generated owner password.
type GeneratedPasswordResponse struct {
	Password string `json:"password"`
}

// FieldErrorResponse is the inline field failure envelope.
type FieldErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Field            string `json:"field"`
	Reason           string `json:"reason"`
}
