// internal/app/system/normalize/normalize.go

// Package normalize provides canonical forms for user-supplied identity
// fields before they are persisted or matched.
package normalize

import "strings"

// Email trims surrounding whitespace. Case is preserved: emails are
// stored as registered and matched exactly, so "A@x.com" and "a@x.com"
// are distinct accounts.
func Email(s string) string {
	return strings.TrimSpace(s)
}

// Name trims surrounding whitespace and preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}
