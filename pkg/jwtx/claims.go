// Package jwtx issues and verifies the HS256 tokens used by the identity
// service: short-lived access tokens carrying role claims and longer-lived
// refresh tokens carrying only a subject.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes. Short access tokens keep the damage from a leaked
// bearer token bounded; the refresh window is a week, matching the session
// retention in the registry.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// AccessClaims is the closed claim schema embedded in access tokens. The
// struct is deliberately not an open map so issuance and verification can
// never drift apart silently.
type AccessClaims struct {
	jwt.RegisteredClaims

	// Email of the authenticated identity.
	Email string `json:"email,omitempty"`

	// Roles held at issuance time, e.g. ["admin"]. Authorization
	// middleware intersects these with each endpoint's required set.
	Roles []string `json:"roles,omitempty"`
}

// RefreshClaims is the claim schema of refresh tokens: subject plus the
// registered timestamps, nothing else. Everything mutable lives in the
// session registry row instead.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

func newRegisteredClaims(subject, issuer string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
