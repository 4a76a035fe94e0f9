package domain

import (
	"strings"
)

// NormalizeName returns the comparison key of an ingredient name: surrounding
// whitespace trimmed, lower-cased, everything else untouched. Two names denote
// the same ingredient iff their keys are equal.
func NormalizeName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
