package models

import (
	"fmt"

	dErrors "atrium/pkg/domain-errors"
)

// Field names the tenant creation form fields.
type Field string

const (
	FieldDomain           Field = "domain"
	FieldOrganizationName Field = "organization_name"
	FieldUsername         Field = "username"
	FieldEmail            Field = "email"
	FieldFirstName        Field = "firstname"
	FieldLastName         Field = "lastname"
	FieldPassword         Field = "password"
)

// Reason identifies which validation rule rejected a field value.
type Reason string

const (
	ReasonMissingExtension Reason = "missing-extension"
	ReasonInvalidPattern   Reason = "invalid-pattern"
	ReasonLeadingDot       Reason = "leading-dot"
	ReasonIllegalChars     Reason = "illegal-chars"
	ReasonUnavailable      Reason = "unavailable"
	ReasonRequired         Reason = "required"
	ReasonInvalidEmail     Reason = "invalid-email"
	ReasonInvalidUsername  Reason = "invalid-username"
	ReasonNameExcluded     Reason = "name-excluded"
)

// FieldError is a validation failure scoped to a single form field. It blocks
// submission and renders inline; it never clears other fields' state.
type FieldError struct {
	Field   Field
	Reason  Reason
	Message string
}

func (e *FieldError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Code maps the failure onto the domain error taxonomy: availability
// failures (including transport faults, which fail closed) are
// CodeUnavailable, everything else is a plain validation failure.
func (e *FieldError) Code() dErrors.Code {
	if e.Reason == ReasonUnavailable {
		return dErrors.CodeUnavailable
	}
	return dErrors.CodeValidation
}

// NewFieldError creates a field-scoped validation error.
func NewFieldError(field Field, reason Reason, message string) *FieldError {
	return &FieldError{Field: field, Reason: reason, Message: message}
}

// FormInput is the raw tenant creation form state at submit time.
type FormInput struct {
	Domain             string
	OrganizationName   string
	Username           string
	Email              string
	FirstName          string
	LastName           string
	Password           string
	ProvisioningMethod string
}
