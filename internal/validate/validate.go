// Package validate holds the field checks applied to registration input.
package validate

import (
	"regexp"

	"sorteo-ig/internal/models"
)

var phonePattern = regexp.MustCompile(`^549\d{10}$`)

// Phone reports whether s is an Argentine mobile number in canonical form:
// "549" followed by exactly ten digits. Spaces, "+" or dashes are rejected,
// not stripped.
func Phone(s string) bool {
	return phonePattern.MatchString(s)
}

// AllPresent reports whether every field is non-empty. A field made only of
// whitespace counts as present.
func AllPresent(fields ...string) bool {
	for _, f := range fields {
		if f == "" {
			return false
		}
	}
	return true
}

// Region reports whether s is one of the provinces in models.Regions.
func Region(s string) bool {
	for _, r := range models.Regions {
		if r == s {
			return true
		}
	}
	return false
}
