// Package normalize canonicalizes user-supplied identity fields before they
// are stored or compared. Every store that writes these fields goes through
// here so lookups never miss on case or stray whitespace.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role lowercases and trims a membership role.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// OrgCode uppercases and trims an organization join code.
func OrgCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
