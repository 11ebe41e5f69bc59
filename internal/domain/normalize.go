package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is applied to sign-in names and taxonomy labels before they are stored or encoded.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeOptionalName applies NormalizeHumanName to an optional label.
// A nil pointer or a label that normalizes to "" yields nil.
func NormalizeOptionalName(s *string) *string {
	if s == nil {
		return nil
	}
	v := NormalizeHumanName(*s)
	if v == "" {
		return nil
	}
	return &v
}
