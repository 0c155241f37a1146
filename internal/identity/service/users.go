package service

import (
	"context"
	"errors"
	"time"

	"github.com/feiralabs/feira/internal/identity/domain"
	"github.com/feiralabs/feira/internal/identity/store"
	"github.com/feiralabs/feira/pkg/cryptox"
	"github.com/feiralabs/feira/pkg/slogx"
)

// UserService covers registration and the admin user surface. Password
// hashing always happens here, outside any store transaction, because a
// bcrypt call is deliberately slow.
type UserService struct {
	Store store.Store
}

// Register creates an active user with the customer role. Returns
// ErrEmailTaken when the address is in use and domain.ErrInvalidEmail on a
// malformed address.
func (s *UserService) Register(ctx context.Context, email, name, password string) (domain.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user, err := domain.NewUser(email, name, hash)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	// Every self-registered identity starts as a customer.
	role, err := s.Store.Roles().GetRoleByName(ctx, domain.RoleCustomer)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// No customer role seeded; the account still exists, it just
			// holds no roles yet.
			slogx.FromContext(ctx).Warn("customer role missing, registered user holds no roles",
				"user_id", user.ID)
			return user, nil
		}
		return domain.User{}, err
	}
	if err := s.Store.Roles().AssignRole(ctx, user.ID, role.ID); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// UserUpdate carries the admin-editable fields; nil means leave unchanged.
type UserUpdate struct {
	Name     *string
	IsActive *bool
	Password *string
}

// UpdateUser applies an admin edit. A password change revokes every
// outstanding refresh session of the user so stolen refresh tokens die with
// the old password.
func (s *UserService) UpdateUser(ctx context.Context, userID string, upd UserUpdate) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}

	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}

	passwordChanged := false
	if upd.Password != nil {
		hash, err := cryptox.HashPassword(*upd.Password)
		if err != nil {
			return domain.User{}, err
		}
		user.PasswordHash = hash
		passwordChanged = true
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.Store.Users().UpdateUser(ctx, user); err != nil {
		return domain.User{}, err
	}

	if passwordChanged {
		if err := s.Store.RefreshSessions().RevokeAllForUser(ctx, userID); err != nil {
			return domain.User{}, err
		}
		slogx.FromContext(ctx).Info("password changed, refresh sessions revoked", "user_id", userID)
	}

	return user, nil
}

// SoftDeleteUser marks the user deleted and revokes their sessions. The row
// survives for auditability; login sees the account as inactive.
func (s *UserService) SoftDeleteUser(ctx context.Context, userID string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	user.SoftDelete(time.Now().UTC())
	if err := s.Store.Users().UpdateUser(ctx, user); err != nil {
		return err
	}
	return s.Store.RefreshSessions().RevokeAllForUser(ctx, userID)
}

// ListUsers pages over non-deleted users for the admin surface.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Store.Users().ListUsers(ctx, limit, offset)
}
