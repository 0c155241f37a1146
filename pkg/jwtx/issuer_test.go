package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAccessIssuer(t *testing.T) {
	t.Parallel()

	secret := []byte("test-access-secret")
	issuer := NewAccessIssuer(secret, "identity-test", 15*time.Minute)

	t.Run("round trip preserves identity claims", func(t *testing.T) {
		token, err := issuer.Issue("user-1", "alice@example.com", []string{"admin", "member"})
		require.NoError(t, err)

		claims, err := issuer.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.Subject)
		require.Equal(t, "alice@example.com", claims.Email)
		require.Equal(t, []string{"admin", "member"}, claims.Roles)
		require.Equal(t, "identity-test", claims.Issuer)
	})

	t.Run("wrong secret fails with bad signature", func(t *testing.T) {
		token, err := issuer.Issue("user-1", "alice@example.com", nil)
		require.NoError(t, err)

		other := NewAccessIssuer([]byte("a-different-secret"), "identity-test", 15*time.Minute)
		_, err = other.Verify(token)
		require.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("expired token fails with expired", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		backdated := &AccessIssuer{
			secret: secret,
			issuer: "identity-test",
			ttl:    time.Minute,
			now:    func() time.Time { return past },
		}
		token, err := backdated.Issue("user-1", "alice@example.com", nil)
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("expired token with wrong secret fails with bad signature", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		backdated := &AccessIssuer{
			secret: []byte("a-different-secret"),
			issuer: "identity-test",
			ttl:    time.Minute,
			now:    func() time.Time { return past },
		}
		token, err := backdated.Issue("user-1", "alice@example.com", nil)
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		require.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("garbage fails with malformed", func(t *testing.T) {
		_, err := issuer.Verify("not.a.jwt")
		require.ErrorIs(t, err, ErrMalformed)

		_, err = issuer.Verify("")
		require.ErrorIs(t, err, ErrMalformed)
	})
}

func TestRefreshIssuer(t *testing.T) {
	t.Parallel()

	issuer := NewRefreshIssuer([]byte("test-refresh-secret"), "identity-test", 7*24*time.Hour)

	t.Run("round trip preserves subject", func(t *testing.T) {
		token, err := issuer.Issue("user-42")
		require.NoError(t, err)

		claims, err := issuer.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "user-42", claims.Subject)
	})

	t.Run("access secret cannot verify refresh tokens", func(t *testing.T) {
		token, err := issuer.Issue("user-42")
		require.NoError(t, err)

		crossed := NewRefreshIssuer([]byte("test-access-secret"), "identity-test", 7*24*time.Hour)
		_, err = crossed.Verify(token)
		require.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("expired refresh token fails with expired", func(t *testing.T) {
		past := time.Now().Add(-30 * 24 * time.Hour)
		backdated := &RefreshIssuer{
			secret: []byte("test-refresh-secret"),
			issuer: "identity-test",
			ttl:    7 * 24 * time.Hour,
			now:    func() time.Time { return past },
		}
		token, err := backdated.Issue("user-42")
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		require.ErrorIs(t, err, ErrExpired)
	})
}

func TestDefaultTTLs(t *testing.T) {
	t.Parallel()

	// Zero or negative TTLs fall back to the defaults instead of minting
	// instantly-expired tokens.
	access := NewAccessIssuer([]byte("s1"), "identity-test", 0)
	require.Equal(t, DefaultAccessTTL, access.TTL())

	refresh := NewRefreshIssuer([]byte("s2"), "identity-test", -time.Hour)
	require.Equal(t, DefaultRefreshTTL, refresh.TTL())
}
