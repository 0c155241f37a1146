package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Typed verification failures. Callers must treat every one of them as a
// dead end; none of the returned claims may be used after a non-nil error.
var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrBadSignature = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
)

var signingMethods = []string{jwt.SigningMethodHS256.Alg()}

// AccessIssuer signs and verifies access tokens with the access secret.
// It is pure CPU work; no store round trips.
type AccessIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewAccessIssuer(secret []byte, issuer string, ttl time.Duration) *AccessIssuer {
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	return &AccessIssuer{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue builds and signs an access token for the given identity. Roles are
// resolved by the caller at issuance time and frozen into the claims.
func (s *AccessIssuer) Issue(subject, email string, roles []string) (string, error) {
	now := s.now().UTC()
	claims := AccessClaims{
		RegisteredClaims: newRegisteredClaims(subject, s.issuer, s.ttl, now),
		Email:            email,
		Roles:            roles,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// TTL reports the configured access-token lifetime.
func (s *AccessIssuer) TTL() time.Duration { return s.ttl }

// Verify checks signature and expiry and returns the decoded claims.
func (s *AccessIssuer) Verify(token string) (AccessClaims, error) {
	var claims AccessClaims
	if err := s.parse(token, &claims); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

func (s *AccessIssuer) parse(token string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithValidMethods(signingMethods),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuedAt(),
	)
	return mapParseError(err)
}

func (s *AccessIssuer) keyFunc(*jwt.Token) (any, error) { return s.secret, nil }

// RefreshIssuer signs and verifies refresh tokens with the refresh secret.
// A separate secret means a leaked access secret cannot forge refresh tokens.
type RefreshIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewRefreshIssuer(secret []byte, issuer string, ttl time.Duration) *RefreshIssuer {
	if ttl <= 0 {
		ttl = DefaultRefreshTTL
	}
	return &RefreshIssuer{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue builds and signs a refresh token bound to the subject.
func (s *RefreshIssuer) Issue(subject string) (string, error) {
	now := s.now().UTC()
	claims := RefreshClaims{
		RegisteredClaims: newRegisteredClaims(subject, s.issuer, s.ttl, now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// TTL reports the configured refresh-token lifetime.
func (s *RefreshIssuer) TTL() time.Duration { return s.ttl }

// Verify checks signature and expiry and returns the decoded claims.
func (s *RefreshIssuer) Verify(token string) (RefreshClaims, error) {
	var claims RefreshClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods(signingMethods),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuedAt(),
	)
	if err := mapParseError(err); err != nil {
		return RefreshClaims{}, err
	}
	return claims, nil
}

// mapParseError collapses golang-jwt's error tree into our sentinels.
// Signature problems take precedence over expiry: a token signed with the
// wrong secret must never be reported as merely expired.
func mapParseError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrExpired
	default:
		return ErrMalformed
	}
}
