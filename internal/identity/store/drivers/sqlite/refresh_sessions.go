package sqlite

import (
	"context"
	"time"

	"github.com/feiralabs/feira/internal/identity/domain"
)

type refreshSessionsRepo struct {
	db dbtx
}

func (r *refreshSessionsRepo) CreateRefreshSession(ctx context.Context, s domain.RefreshSession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_sessions (token_hash, user_id, expires_at, revoked, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.TokenHash, s.UserID, s.ExpiresAt, s.Revoked, s.CreatedAt, s.UpdatedAt)
	return mapConstraint(err)
}

func (r *refreshSessionsRepo) GetRefreshSessionByHash(ctx context.Context, hash string) (domain.RefreshSession, error) {
	var s domain.RefreshSession
	err := r.db.QueryRowContext(ctx,
		`SELECT token_hash, user_id, expires_at, revoked, created_at, updated_at
		 FROM refresh_sessions WHERE token_hash = ?`, hash).
		Scan(&s.TokenHash, &s.UserID, &s.ExpiresAt, &s.Revoked, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.RefreshSession{}, mapNotFound(err)
	}
	return s, nil
}

// ConsumeRefreshSession is the single-use gate for rotation. The WHERE
// revoked = 0 condition means exactly one of any number of concurrent
// consumers sees a row flip; everyone else gets zero rows affected.
func (r *refreshSessionsRepo) ConsumeRefreshSession(ctx context.Context, hash string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_sessions SET revoked = 1, updated_at = ?
		 WHERE token_hash = ? AND revoked = 0`,
		time.Now().UTC(), hash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *refreshSessionsRepo) RevokeRefreshSession(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_sessions SET revoked = 1, updated_at = ?
		 WHERE token_hash = ? AND revoked = 0`,
		time.Now().UTC(), hash)
	return err
}

func (r *refreshSessionsRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_sessions SET revoked = 1, updated_at = ?
		 WHERE user_id = ? AND revoked = 0`,
		time.Now().UTC(), userID)
	return err
}

func (r *refreshSessionsRepo) PurgeExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_sessions WHERE expires_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
