package service

import "errors"

// Caller-recoverable failures of the identity surface. The HTTP layer maps
// these to status codes; anything else coming out of a service is an
// infrastructure failure and surfaces as a generic server error.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two are never distinguished externally.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInactiveAccount rejects logins for deactivated or soft-deleted
	// identities.
	ErrInactiveAccount = errors.New("inactive_account")

	// ErrInvalidToken covers bad signature, malformed tokens, unknown
	// registry records, and revoked sessions.
	ErrInvalidToken = errors.New("invalid_token")

	// ErrExpiredToken means the session record outlived its expiry.
	ErrExpiredToken = errors.New("expired_token")

	// ErrEmailTaken rejects registration with an already-used address.
	ErrEmailTaken = errors.New("email_taken")

	// ErrRoleNameTaken rejects creating a role whose name already exists.
	ErrRoleNameTaken = errors.New("role_name_taken")

	// ErrNotFound reports a missing user or role on the admin surface.
	ErrNotFound = errors.New("not_found")

	// ErrProtectedRole refuses deletion of the built-in system roles.
	ErrProtectedRole = errors.New("protected_role")
)
