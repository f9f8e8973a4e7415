// Package phone normalizes US phone numbers into the canonical form the provider expects.
package phone

import "strings"

const (
	// CountryPrefix is the prefix every canonical number starts with
	CountryPrefix = "+1"

	// CanonicalLength is the length of a canonical number: "+1" followed by 10 digits
	CanonicalLength = 12
)

var separators = strings.NewReplacer("-", "", " ", "")

// Format strips dashes and spaces and ensures the number starts with +1.
func Format(raw string) string {
	formatted := separators.Replace(raw)

	switch {
	case strings.HasPrefix(formatted, CountryPrefix):
		return formatted
	case strings.HasPrefix(formatted, "1"):
		return "+" + formatted
	default:
		return CountryPrefix + formatted
	}
}

// IsValid reports whether number is in canonical form.
func IsValid(number string) bool {
	return strings.HasPrefix(number, CountryPrefix) && len(number) == CanonicalLength
}
