package string

import (
	"strings"
	"unicode"
)

// TrimStrings trims whitespace from each string in place.
func TrimStrings(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}

// TrimSlice trims whitespace from every element in place.
func TrimSlice(ss []string) {
	for i := range ss {
		ss[i] = strings.TrimSpace(ss[i])
	}
}

// NormalizeDomain lowercases a domain name and strips surrounding
// whitespace and a single trailing dot. The comparison form is what gets
// validated and sent upstream; the operator's casing is never significant.
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	return strings.TrimSuffix(domain, ".")
}

// ToSnakeCase converts CamelCase identifiers to snake_case for user-facing
// validation messages.
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
