package service

import (
	"regexp"
	"testing"

	"atrium/internal/tenantform/models"
)

func TestValidateTenantDomainExtensionPolicy(t *testing.T) {
	settings := &models.Settings{MandatoryDotExtension: true}

	for _, domain := range []string{"acme", "localhost", ""} {
		if fieldErr := ValidateTenantDomain(settings, domain); fieldErr == nil || fieldErr.Reason != models.ReasonMissingExtension {
			t.Fatalf("domain %q: expected missing-extension, got %v", domain, fieldErr)
		}
	}

	if fieldErr := ValidateTenantDomain(settings, "acme.io"); fieldErr != nil {
		t.Fatalf("expected acme.io to pass, got %v", fieldErr)
	}
}

func TestValidateTenantDomainLeadingDot(t *testing.T) {
	// A leading dot is rejected with or without a configured pattern.
	cases := []*models.Settings{
		{},
		{TenantDomainPattern: regexp.MustCompile(`^[a-z0-9.-]+$`)},
	}
	for _, settings := range cases {
		fieldErr := ValidateTenantDomain(settings, ".acme.io")
		if fieldErr == nil {
			t.Fatal("expected leading-dot domain to fail")
		}
		if fieldErr.Reason != models.ReasonLeadingDot {
			t.Fatalf("expected leading-dot, got %v", fieldErr.Reason)
		}
	}

	// With the extension policy on, the extension rule fires first.
	settings := &models.Settings{MandatoryDotExtension: true}
	if fieldErr := ValidateTenantDomain(settings, ".acme"); fieldErr == nil || fieldErr.Reason != models.ReasonMissingExtension {
		t.Fatalf("expected missing-extension under policy, got %v", fieldErr)
	}
}

func TestValidateTenantDomainPattern(t *testing.T) {
	settings := &models.Settings{TenantDomainPattern: regexp.MustCompile(`^[a-z0-9.-]+$`)}

	if fieldErr := ValidateTenantDomain(settings, "My_Org"); fieldErr == nil || fieldErr.Reason != models.ReasonInvalidPattern {
		t.Fatalf("expected invalid-pattern for My_Org, got %v", fieldErr)
	}
	if fieldErr := ValidateTenantDomain(settings, "my-org.io"); fieldErr != nil {
		t.Fatalf("expected my-org.io to pass, got %v", fieldErr)
	}
}

func TestValidateTenantDomainIllegalChars(t *testing.T) {
	settings := &models.Settings{IllegalChars: regexp.MustCompile(`[!@#$%]`)}

	if fieldErr := ValidateTenantDomain(settings, "acme!io"); fieldErr == nil || fieldErr.Reason != models.ReasonIllegalChars {
		t.Fatalf("expected illegal-chars, got %v", fieldErr)
	}
}

func TestValidateTenantDomainSkipsAbsentRules(t *testing.T) {
	// No configured patterns, no extension policy: everything without a
	// leading dot passes.
	settings := &models.Settings{}
	for _, domain := range []string{"acme", "ACME_corp", "a.b.c"} {
		if fieldErr := ValidateTenantDomain(settings, domain); fieldErr != nil {
			t.Fatalf("domain %q: expected pass with no rules configured, got %v", domain, fieldErr)
		}
	}
}

func TestValidateOrganizationNameExclusion(t *testing.T) {
	settings := &models.Settings{OrgNameExclusion: regexp.MustCompile(`[^a-zA-Z0-9 ]`)}

	if fieldErr := ValidateOrganizationName(settings, "Acme Corp"); fieldErr != nil {
		t.Fatalf("expected Acme Corp to pass, got %v", fieldErr)
	}
	if fieldErr := ValidateOrganizationName(settings, "Acme!"); fieldErr == nil || fieldErr.Reason != models.ReasonNameExcluded {
		t.Fatalf("expected Acme! to be excluded, got %v", fieldErr)
	}
}

func TestValidateUsername(t *testing.T) {
	t.Run("userstore validation enabled skips client checks", func(t *testing.T) {
		settings := &models.Settings{UserstoreValidationEnabled: true}
		if fieldErr := ValidateUsername(settings, "anything goes"); fieldErr != nil {
			t.Fatalf("expected no client-side check, got %v", fieldErr)
		}
	})

	t.Run("disabled requires pattern and email syntax", func(t *testing.T) {
		settings := &models.Settings{UsernamePattern: regexp.MustCompile(`^[a-z0-9.@-]+$`)}

		if fieldErr := ValidateUsername(settings, "admin@acme.io"); fieldErr != nil {
			t.Fatalf("expected admin@acme.io to pass, got %v", fieldErr)
		}
		if fieldErr := ValidateUsername(settings, "Admin User"); fieldErr == nil {
			t.Fatal("expected pattern mismatch to fail")
		}
		if fieldErr := ValidateUsername(settings, "admin.acme.io"); fieldErr == nil {
			t.Fatal("expected non-email username to fail")
		}
	})
}
