package service

import (
	"strings"

	"atrium/internal/tenantform/models"
	"atrium/pkg/validation"
)

// ValidateTenantDomain applies the synchronous domain rules in strict order.
// Only when every rule passes may a remote availability check be issued.
func ValidateTenantDomain(settings *models.Settings, domain string) *models.FieldError {
	dotIndex := strings.Index(domain, ".")

	// 1. Extension policy: the domain must contain a dot past the first
	// character when the platform mandates an extension.
	if settings.MandatoryDotExtension && dotIndex <= 0 {
		return models.NewFieldError(models.FieldDomain, models.ReasonMissingExtension,
			"domain must contain an extension")
	}

	// 2. Remote-configured domain pattern.
	if settings.TenantDomainPattern != nil && !settings.TenantDomainPattern.MatchString(domain) {
		return models.NewFieldError(models.FieldDomain, models.ReasonInvalidPattern,
			"domain contains invalid characters")
	}

	// 3. A leading dot is rejected independent of any configured pattern.
	if dotIndex == 0 {
		return models.NewFieldError(models.FieldDomain, models.ReasonLeadingDot,
			"domain must not start with a dot")
	}

	// 4. Remote-configured illegal character pattern.
	if settings.IllegalChars != nil && settings.IllegalChars.MatchString(domain) {
		return models.NewFieldError(models.FieldDomain, models.ReasonIllegalChars,
			"domain contains illegal characters")
	}

	return nil
}

// ValidateUsername applies the client-side username rules. When userstore
// validation is enabled the accepted characters are enforced server-side and
// only presence is checked at submit time; otherwise the username must match
// the configured pattern and be a syntactically valid email address.
func ValidateUsername(settings *models.Settings, username string) *models.FieldError {
	if settings.UserstoreValidationEnabled {
		return nil
	}

	if settings.UsernamePattern != nil && !settings.UsernamePattern.MatchString(username) {
		return models.NewFieldError(models.FieldUsername, models.ReasonInvalidUsername,
			"username does not match the allowed pattern")
	}
	if !validation.IsEmail(username) {
		return models.NewFieldError(models.FieldUsername, models.ReasonInvalidUsername,
			"username must be a valid email address")
	}
	return nil
}

// ValidateOrganizationName checks the name against the configured exclusion
// pattern. The pattern is a disallow-list: a match means the name contains
// forbidden characters and is rejected.
func ValidateOrganizationName(settings *models.Settings, name string) *models.FieldError {
	if settings.OrgNameExclusion != nil && settings.OrgNameExclusion.MatchString(name) {
		return models.NewFieldError(models.FieldOrganizationName, models.ReasonNameExcluded,
			"organization name contains forbidden characters")
	}
	return nil
}
