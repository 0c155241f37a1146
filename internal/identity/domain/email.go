package domain

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidEmail reports an address that fails normalization.
var ErrInvalidEmail = errors.New("domain: invalid email address")

// emailPattern is intentionally loose: one @, no whitespace, a dotted
// domain. Deliverability is the mail system's problem, not ours.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims, lowercases, and validates an email address.
// Uniqueness is the store's job; this only guards shape and length.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if len(email) > 255 || !emailPattern.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}
