package store

import (
	"context"
	"errors"
	"time"

	"github.com/feiralabs/feira/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it.
// Sub-repositories keep concerns tidy and let services depend on exactly the
// tables they touch.
type Store interface {
	Users() Users
	Roles() Roles
	RefreshSessions() RefreshSessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST Commit() or Rollback() the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing on nil and rolling
	// back on error. Refresh rotation depends on this being atomic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store: the same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id, soft-deleted rows included.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is the login lookup. Email must already be normalized.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. Returns ErrAlreadyExists when the
	// email is taken; the unique index is the real enforcement point.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser writes name, is_active, password_hash, and deleted_at,
	// bumping updated_at.
	UpdateUser(ctx context.Context, u domain.User) error

	// ListUsers pages over non-deleted users, newest first.
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)

	// IsEmpty reports whether no users exist yet.
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListAll returns every role ordered by name.
	ListAll(ctx context.Context) ([]domain.Role, error)

	// CreateRole inserts a new role. ErrAlreadyExists on a duplicate name.
	CreateRole(ctx context.Context, r domain.Role) error

	UpdateRoleDescription(ctx context.Context, roleID, description string) error

	// DeleteRole removes a role and its assignments. The system-role check
	// lives in the service layer, not here.
	DeleteRole(ctx context.Context, roleID string) error

	// AssignRole links a user to a role. Assigning twice is a no-op.
	AssignRole(ctx context.Context, userID, roleID string) error

	// ListNamesForUser returns the role names held by a user, sorted.
	ListNamesForUser(ctx context.Context, userID string) ([]string, error)

	// IsEmpty reports whether no roles exist yet (drives the startup seed).
	IsEmpty(ctx context.Context) (bool, error)
}

type RefreshSessions interface {
	// CreateRefreshSession stores a new session record.
	CreateRefreshSession(ctx context.Context, s domain.RefreshSession) error

	// GetRefreshSessionByHash returns the record for a token fingerprint.
	GetRefreshSessionByHash(ctx context.Context, hash string) (domain.RefreshSession, error)

	// ConsumeRefreshSession atomically flips revoked on a currently live
	// record and reports whether it won. A false return means the token was
	// already revoked or never existed; the caller must fail the refresh.
	// This conditional update is what makes a refresh token single-use
	// under concurrent replays.
	ConsumeRefreshSession(ctx context.Context, hash string) (bool, error)

	// RevokeRefreshSession marks a session revoked. Idempotent: revoking a
	// revoked or unknown token is a no-op, not an error.
	RevokeRefreshSession(ctx context.Context, hash string) error

	// RevokeAllForUser revokes every live session of one user.
	RevokeAllForUser(ctx context.Context, userID string) error

	// PurgeExpiredBefore deletes sessions whose expiry predates cutoff.
	// Housekeeping only; auth operations never delete rows.
	PurgeExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
