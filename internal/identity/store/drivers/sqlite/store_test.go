package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/feiralabs/feira/internal/identity/domain"
	"github.com/feiralabs/feira/internal/identity/store"
	"github.com/feiralabs/feira/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newMigratedStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL",
		filepath.Join(t.TempDir(), "store-test.db"))
	st, err := NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func insertUser(t *testing.T, st *Store, email string) domain.User {
	t.Helper()
	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: "hash",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user
}

func insertSession(t *testing.T, st *Store, userID, hash string, expiresAt time.Time) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, st.RefreshSessions().CreateRefreshSession(context.Background(), domain.RefreshSession{
		TokenHash: hash,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func TestUsersRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create and fetch by id and email", func(t *testing.T) {
		st := newMigratedStore(t)
		user := insertUser(t, st, "alice@example.com")

		byID, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, user.Email, byID.Email)
		require.True(t, byID.IsActive)
		require.Nil(t, byID.DeletedAt)

		byEmail, err := st.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, user.ID, byEmail.ID)
	})

	t.Run("duplicate email maps to already exists", func(t *testing.T) {
		st := newMigratedStore(t)
		insertUser(t, st, "alice@example.com")

		now := time.Now().UTC()
		err := st.Users().CreateUser(ctx, domain.User{
			ID:           idx.New().String(),
			Email:        "alice@example.com",
			Name:         "Dup",
			PasswordHash: "hash",
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("missing user maps to not found", func(t *testing.T) {
		st := newMigratedStore(t)
		_, err := st.Users().GetUserByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update persists soft delete marker", func(t *testing.T) {
		st := newMigratedStore(t)
		user := insertUser(t, st, "alice@example.com")

		user.SoftDelete(time.Now().UTC())
		require.NoError(t, st.Users().UpdateUser(ctx, user))

		got, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.False(t, got.IsActive)
		require.NotNil(t, got.DeletedAt)

		// Soft-deleted rows drop out of listings.
		users, err := st.Users().ListUsers(ctx, 10, 0)
		require.NoError(t, err)
		require.Empty(t, users)
	})

	t.Run("is empty flips after first insert", func(t *testing.T) {
		st := newMigratedStore(t)

		empty, err := st.Users().IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)

		insertUser(t, st, "alice@example.com")

		empty, err = st.Users().IsEmpty(ctx)
		require.NoError(t, err)
		require.False(t, empty)
	})
}

func TestRefreshSessionsRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("consume flips exactly once", func(t *testing.T) {
		st := newMigratedStore(t)
		user := insertUser(t, st, "alice@example.com")
		insertSession(t, st, user.ID, "hash-1", time.Now().UTC().Add(time.Hour))

		consumed, err := st.RefreshSessions().ConsumeRefreshSession(ctx, "hash-1")
		require.NoError(t, err)
		require.True(t, consumed)

		// Second consume of the same hash loses.
		consumed, err = st.RefreshSessions().ConsumeRefreshSession(ctx, "hash-1")
		require.NoError(t, err)
		require.False(t, consumed)

		session, err := st.RefreshSessions().GetRefreshSessionByHash(ctx, "hash-1")
		require.NoError(t, err)
		require.True(t, session.Revoked)
	})

	t.Run("consume of unknown hash reports false", func(t *testing.T) {
		st := newMigratedStore(t)
		consumed, err := st.RefreshSessions().ConsumeRefreshSession(ctx, "never-stored")
		require.NoError(t, err)
		require.False(t, consumed)
	})

	t.Run("revoke is idempotent and keeps the row", func(t *testing.T) {
		st := newMigratedStore(t)
		user := insertUser(t, st, "alice@example.com")
		insertSession(t, st, user.ID, "hash-1", time.Now().UTC().Add(time.Hour))

		require.NoError(t, st.RefreshSessions().RevokeRefreshSession(ctx, "hash-1"))
		require.NoError(t, st.RefreshSessions().RevokeRefreshSession(ctx, "hash-1"))
		require.NoError(t, st.RefreshSessions().RevokeRefreshSession(ctx, "unknown"))

		session, err := st.RefreshSessions().GetRefreshSessionByHash(ctx, "hash-1")
		require.NoError(t, err)
		require.True(t, session.Revoked)
	})

	t.Run("revoke all only touches one user", func(t *testing.T) {
		st := newMigratedStore(t)
		alice := insertUser(t, st, "alice@example.com")
		bob := insertUser(t, st, "bob@example.com")
		expiry := time.Now().UTC().Add(time.Hour)
		insertSession(t, st, alice.ID, "alice-1", expiry)
		insertSession(t, st, alice.ID, "alice-2", expiry)
		insertSession(t, st, bob.ID, "bob-1", expiry)

		require.NoError(t, st.RefreshSessions().RevokeAllForUser(ctx, alice.ID))

		for _, hash := range []string{"alice-1", "alice-2"} {
			s, err := st.RefreshSessions().GetRefreshSessionByHash(ctx, hash)
			require.NoError(t, err)
			require.True(t, s.Revoked)
		}
		s, err := st.RefreshSessions().GetRefreshSessionByHash(ctx, "bob-1")
		require.NoError(t, err)
		require.False(t, s.Revoked)
	})

	t.Run("purge deletes only sessions past the cutoff", func(t *testing.T) {
		st := newMigratedStore(t)
		user := insertUser(t, st, "alice@example.com")
		now := time.Now().UTC()
		insertSession(t, st, user.ID, "old", now.Add(-2*time.Hour))
		insertSession(t, st, user.ID, "fresh", now.Add(time.Hour))

		purged, err := st.RefreshSessions().PurgeExpiredBefore(ctx, now.Add(-time.Hour))
		require.NoError(t, err)
		require.EqualValues(t, 1, purged)

		_, err = st.RefreshSessions().GetRefreshSessionByHash(ctx, "old")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = st.RefreshSessions().GetRefreshSessionByHash(ctx, "fresh")
		require.NoError(t, err)
	})

	t.Run("session insert requires an existing user", func(t *testing.T) {
		st := newMigratedStore(t)
		now := time.Now().UTC()
		err := st.RefreshSessions().CreateRefreshSession(ctx, domain.RefreshSession{
			TokenHash: "orphan",
			UserID:    "no-such-user",
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now,
			UpdatedAt: now,
		})
		require.Error(t, err)
	})
}

func TestWithTx(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("commit persists writes", func(t *testing.T) {
		st := newMigratedStore(t)
		user := insertUser(t, st, "alice@example.com")

		err := st.WithTx(ctx, func(tx store.Tx) error {
			now := time.Now().UTC()
			return tx.RefreshSessions().CreateRefreshSession(ctx, domain.RefreshSession{
				TokenHash: "tx-hash",
				UserID:    user.ID,
				ExpiresAt: now.Add(time.Hour),
				CreatedAt: now,
				UpdatedAt: now,
			})
		})
		require.NoError(t, err)

		_, err = st.RefreshSessions().GetRefreshSessionByHash(ctx, "tx-hash")
		require.NoError(t, err)
	})

	t.Run("error rolls everything back", func(t *testing.T) {
		st := newMigratedStore(t)
		user := insertUser(t, st, "alice@example.com")

		sentinel := fmt.Errorf("boom")
		err := st.WithTx(ctx, func(tx store.Tx) error {
			now := time.Now().UTC()
			if err := tx.RefreshSessions().CreateRefreshSession(ctx, domain.RefreshSession{
				TokenHash: "tx-hash",
				UserID:    user.ID,
				ExpiresAt: now.Add(time.Hour),
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return err
			}
			return sentinel
		})
		require.ErrorIs(t, err, sentinel)

		_, err = st.RefreshSessions().GetRefreshSessionByHash(ctx, "tx-hash")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRolesRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newRole := func(name string) domain.Role {
		now := time.Now().UTC()
		return domain.Role{
			ID:        idx.New().String(),
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("duplicate name maps to already exists", func(t *testing.T) {
		st := newMigratedStore(t)
		require.NoError(t, st.Roles().CreateRole(ctx, newRole("admin")))
		require.ErrorIs(t, st.Roles().CreateRole(ctx, newRole("admin")), store.ErrAlreadyExists)
	})

	t.Run("assignment survives duplicates and cascades on delete", func(t *testing.T) {
		st := newMigratedStore(t)
		user := insertUser(t, st, "alice@example.com")
		role := newRole("manager")
		require.NoError(t, st.Roles().CreateRole(ctx, role))

		require.NoError(t, st.Roles().AssignRole(ctx, user.ID, role.ID))
		require.NoError(t, st.Roles().AssignRole(ctx, user.ID, role.ID))

		names, err := st.Roles().ListNamesForUser(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"manager"}, names)

		require.NoError(t, st.Roles().DeleteRole(ctx, role.ID))

		names, err = st.Roles().ListNamesForUser(ctx, user.ID)
		require.NoError(t, err)
		require.Empty(t, names)
	})

	t.Run("names list is sorted", func(t *testing.T) {
		st := newMigratedStore(t)
		user := insertUser(t, st, "alice@example.com")
		for _, name := range []string{"manager", "admin", "customer"} {
			role := newRole(name)
			require.NoError(t, st.Roles().CreateRole(ctx, role))
			require.NoError(t, st.Roles().AssignRole(ctx, user.ID, role.ID))
		}

		names, err := st.Roles().ListNamesForUser(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"admin", "customer", "manager"}, names)
	})
}
