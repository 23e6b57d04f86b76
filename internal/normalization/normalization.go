package normalization

import (
	"strings"
)

// ParseInputString lowercases and trims user-supplied identity fields
// (emails, usernames) so uniqueness checks are case-insensitive.
func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// TrimInputString trims without lowercasing, for free-form text fields.
func TrimInputString(input string) string {
	return strings.TrimSpace(input)
}
