package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/feiralabs/feira/internal/identity/domain"
	"github.com/feiralabs/feira/internal/identity/store"
	"github.com/feiralabs/feira/internal/identity/store/drivers/sqlite"
	"github.com/feiralabs/feira/pkg/cryptox"
	"github.com/feiralabs/feira/pkg/idx"
	"github.com/feiralabs/feira/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a migrated throwaway database. File backed rather than
// in memory so concurrent connections from the pool all see the same data.
func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL",
		filepath.Join(t.TempDir(), "identity-test.db"))
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestAuthService(st store.Store) *AuthService {
	return &AuthService{
		Store:   st,
		Access:  jwtx.NewAccessIssuer([]byte("test-access-secret"), "identity-test", 15*time.Minute),
		Refresh: jwtx.NewRefreshIssuer([]byte("test-refresh-secret"), "identity-test", 7*24*time.Hour),
	}
}

// seedUser creates an active user with the given password and optional role
// names, creating the roles if needed.
func seedUser(t *testing.T, st store.Store, email, password string, roleNames ...string) domain.User {
	t.Helper()
	ctx := context.Background()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	user, err := domain.NewUser(email, "Test User", hash)
	require.NoError(t, err)
	require.NoError(t, st.Users().CreateUser(ctx, user))

	for _, name := range roleNames {
		role := seedRole(t, st, name)
		require.NoError(t, st.Roles().AssignRole(ctx, user.ID, role.ID))
	}
	return user
}

// seedRole fetches or creates a role by name.
func seedRole(t *testing.T, st store.Store, name string) domain.Role {
	t.Helper()
	ctx := context.Background()

	if role, err := st.Roles().GetRoleByName(ctx, name); err == nil {
		return role
	}

	now := time.Now().UTC()
	role := domain.Role{
		ID:        idx.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Roles().CreateRole(ctx, role))
	return role
}
