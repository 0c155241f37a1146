package service

import (
	"context"
	"errors"
	"time"

	"github.com/feiralabs/feira/internal/identity/domain"
	"github.com/feiralabs/feira/internal/identity/store"
	"github.com/feiralabs/feira/pkg/idx"
)

// RolesService is the admin role surface.
type RolesService struct {
	Store store.Store
}

func (s *RolesService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListAll(ctx)
}

func (s *RolesService) CreateRole(ctx context.Context, name, description string) (domain.Role, error) {
	now := time.Now().UTC()
	role := domain.Role{
		ID:          idx.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Roles().CreateRole(ctx, role); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Role{}, ErrRoleNameTaken
		}
		return domain.Role{}, err
	}
	return role, nil
}

func (s *RolesService) UpdateRoleDescription(ctx context.Context, roleID, description string) (domain.Role, error) {
	if err := s.Store.Roles().UpdateRoleDescription(ctx, roleID, description); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Role{}, ErrNotFound
		}
		return domain.Role{}, err
	}
	return s.Store.Roles().GetRoleByID(ctx, roleID)
}

// DeleteRole removes a role unless it is one of the built-in system roles.
// Authorization rules and the registration flow reference those by name, so
// removing them would strand every caller.
func (s *RolesService) DeleteRole(ctx context.Context, roleID string) error {
	role, err := s.Store.Roles().GetRoleByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if domain.IsSystemRole(role.Name) {
		return ErrProtectedRole
	}

	return s.Store.Roles().DeleteRole(ctx, roleID)
}

// AssignRole links a user to a role. Assigning an already-held role is fine.
func (s *RolesService) AssignRole(ctx context.Context, userID, roleID string) error {
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.Store.Roles().GetRoleByID(ctx, roleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.Store.Roles().AssignRole(ctx, userID, roleID)
}
