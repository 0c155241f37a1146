package service

import (
	"context"
	"errors"
	"time"

	"github.com/feiralabs/feira/internal/identity/domain"
	"github.com/feiralabs/feira/internal/identity/store"
	"github.com/feiralabs/feira/pkg/cryptox"
	"github.com/feiralabs/feira/pkg/jwtx"
	"github.com/feiralabs/feira/pkg/slogx"
)

// AuthService orchestrates the credential lifecycle: login, refresh-token
// rotation, and logout. It is the only writer of refresh sessions.
type AuthService struct {
	Store   store.Store
	Access  *jwtx.AccessIssuer
	Refresh *jwtx.RefreshIssuer
}

// LoginResult is the login/register response payload.
type LoginResult struct {
	domain.TokenPair
	User domain.IdentitySummary `json:"user"`
}

// Login verifies credentials and mints a fresh token pair. Unknown email and
// wrong password fail identically; a dummy hash comparison on the unknown
// path keeps the two indistinguishable by latency as well.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		cryptox.VerifyDummy(password)
		return nil, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			cryptox.VerifyDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	if !cryptox.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	roles, err := s.Store.Roles().ListNamesForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	pair, err := s.issuePair(ctx, user, roles)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		TokenPair: *pair,
		User: domain.IdentitySummary{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Roles: roles,
		},
	}, nil
}

// RotateRefreshToken exchanges a refresh token for a new pair. The old
// session is consumed with a conditional update inside the same transaction
// that creates the new one, so any token is spendable at most once: of two
// concurrent calls with the same token, exactly one wins and the other
// observes the revoked record.
func (s *AuthService) RotateRefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	claims, err := s.Refresh.Verify(refreshToken)
	if err != nil {
		// Signature, malformation, and token-level expiry all collapse to
		// invalid here; the registry record is the authority on expiry.
		return nil, ErrInvalidToken
	}

	fp := cryptox.FingerprintToken(refreshToken)

	session, err := s.Store.RefreshSessions().GetRefreshSessionByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if session.Revoked {
		// Replay of a rotated or logged-out token. Externally identical to
		// an unknown token; logged so operators can watch for replays.
		log.Warn("revoked refresh token replayed", "user_id", session.UserID)
		return nil, ErrInvalidToken
	}
	if now.After(session.ExpiresAt) {
		return nil, ErrExpiredToken
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}

	// Roles may have changed since the original login; the new access token
	// carries the current set.
	roles, err := s.Store.Roles().ListNamesForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.Access.Issue(user.ID, user.Email, roles)
	if err != nil {
		return nil, err
	}
	newRefresh, err := s.Refresh.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	newSession := domain.RefreshSession{
		TokenHash: cryptox.FingerprintToken(newRefresh),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.Refresh.TTL()),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		consumed, err := tx.RefreshSessions().ConsumeRefreshSession(ctx, fp)
		if err != nil {
			return err
		}
		if !consumed {
			// Lost the race to a concurrent rotation.
			return ErrInvalidToken
		}
		return tx.RefreshSessions().CreateRefreshSession(ctx, newSession)
	})
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresIn:    s.Access.TTL(),
	}, nil
}

// Logout revokes the session behind a refresh token. Idempotent and
// deliberately quiet: an unknown, garbled, or already-revoked token is a
// no-op, so callers cannot probe which sessions exist.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	fp := cryptox.FingerprintToken(refreshToken)
	return s.Store.RefreshSessions().RevokeRefreshSession(ctx, fp)
}

// issuePair mints an access token for the user's current roles and persists
// a new refresh session.
func (s *AuthService) issuePair(ctx context.Context, user domain.User, roles []string) (*domain.TokenPair, error) {
	now := time.Now().UTC()

	accessToken, err := s.Access.Issue(user.ID, user.Email, roles)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.Refresh.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	session := domain.RefreshSession{
		TokenHash: cryptox.FingerprintToken(refreshToken),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.Refresh.TTL()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.RefreshSessions().CreateRefreshSession(ctx, session); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.Access.TTL(),
	}, nil
}
