package models

import (
	"errors"
	"fmt"
	"regexp"

	"atrium/internal/upstream"
)

// Settings is the compiled validation configuration snapshot a form instance
// runs against. It is taken once at workflow start and never mutated; a nil
// pattern means the corresponding rule is skipped (permissive default).
type Settings struct {
	TenantDomainPattern        *regexp.Regexp
	IllegalChars               *regexp.Regexp
	MandatoryDotExtension      bool
	UserstoreValidationEnabled bool
	UsernamePattern            *regexp.Regexp
	OrgNameExclusion           *regexp.Regexp
	PasswordPolicy             upstream.PasswordPolicy
}

// CompileSettings builds a Settings snapshot from the remote configuration.
// A pattern that fails to compile is treated like an absent one (the rule is
// skipped); the returned error reports every skipped pattern so the caller
// can log it.
func CompileSettings(src *upstream.ValidationSettings) (*Settings, error) {
	if src == nil {
		return &Settings{}, nil
	}

	s := &Settings{
		MandatoryDotExtension:      src.MandatoryDotExtension,
		UserstoreValidationEnabled: src.UserstoreValidationEnabled,
		PasswordPolicy:             src.PasswordPolicy,
	}

	var errs []error
	compile := func(name, pattern string) *regexp.Regexp {
		if pattern == "" {
			return nil
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s pattern %q: %w", name, pattern, err))
			return nil
		}
		return re
	}

	s.TenantDomainPattern = compile("tenant domain", src.TenantDomainPattern)
	s.IllegalChars = compile("illegal characters", src.IllegalCharsPattern)
	s.UsernamePattern = compile("username", src.UsernamePattern)
	s.OrgNameExclusion = compile("organization name exclusion", src.OrgNameExclusionPattern)

	return s, errors.Join(errs...)
}
