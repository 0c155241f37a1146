package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/feiralabs/feira/internal/identity/domain"
	"github.com/feiralabs/feira/internal/identity/store"
	"github.com/feiralabs/feira/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHousekeeperSweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	user := seedUser(t, st, "alice@example.com", "password123")

	now := time.Now().UTC()
	mkSession := func(token string, expiresAt time.Time) {
		require.NoError(t, st.RefreshSessions().CreateRefreshSession(ctx, domain.RefreshSession{
			TokenHash: cryptox.FingerprintToken(token),
			UserID:    user.ID,
			ExpiresAt: expiresAt,
			CreatedAt: now.Add(-60 * 24 * time.Hour),
			UpdatedAt: now.Add(-60 * 24 * time.Hour),
		}))
	}

	// One session far past the retention window, one expired but still
	// inside it, one live.
	mkSession("ancient", now.Add(-45*24*time.Hour))
	mkSession("recently-expired", now.Add(-time.Hour))
	mkSession("live", now.Add(24*time.Hour))

	h := NewHousekeeper(st, slog.New(slog.DiscardHandler), time.Hour, 30*24*time.Hour)
	h.sweep()

	_, err := st.RefreshSessions().GetRefreshSessionByHash(ctx, cryptox.FingerprintToken("ancient"))
	require.ErrorIs(t, err, store.ErrNotFound)

	// Expired sessions stay around for the audit trail until retention runs
	// out.
	_, err = st.RefreshSessions().GetRefreshSessionByHash(ctx, cryptox.FingerprintToken("recently-expired"))
	require.NoError(t, err)

	_, err = st.RefreshSessions().GetRefreshSessionByHash(ctx, cryptox.FingerprintToken("live"))
	require.NoError(t, err)
}

func TestHousekeeperStartStop(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	h := NewHousekeeper(st, slog.New(slog.DiscardHandler), time.Hour, 30*24*time.Hour)

	h.Start()
	h.Stop()
}

func TestNewHousekeeperDefaults(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	h := NewHousekeeper(st, slog.New(slog.DiscardHandler), 0, 0)
	require.Equal(t, time.Hour, h.Interval)
	require.Equal(t, 30*24*time.Hour, h.Retention)
}
