package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/feiralabs/feira/internal/identity/domain"
	"github.com/feiralabs/feira/internal/identity/store"
	"github.com/feiralabs/feira/pkg/cryptox"
	"github.com/feiralabs/feira/pkg/idx"
)

// SeedService provisions a fresh database: the four system roles and an
// initial admin account. It runs once at startup and is a no-op on a
// database that already holds roles.
type SeedService struct {
	Store         store.Store
	Logger        *slog.Logger
	AdminEmail    string
	AdminPassword string
}

var systemRoleDescriptions = map[string]string{
	domain.RoleAdmin:    "Administrator with full access",
	domain.RoleManager:  "Company manager",
	domain.RoleMember:   "Company member",
	domain.RoleCustomer: "Customer user",
}

// Seed creates the system roles and the admin user when the database is
// empty.
func (s *SeedService) Seed(ctx context.Context) error {
	empty, err := s.Store.Roles().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	now := time.Now().UTC()
	for _, name := range []string{domain.RoleAdmin, domain.RoleManager, domain.RoleMember, domain.RoleCustomer} {
		role := domain.Role{
			ID:          idx.New().String(),
			Name:        name,
			Description: systemRoleDescriptions[name],
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.Store.Roles().CreateRole(ctx, role); err != nil {
			return err
		}
	}
	s.Logger.Info("system roles seeded")

	usersEmpty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !usersEmpty {
		return nil
	}

	hash, err := cryptox.HashPassword(s.AdminPassword)
	if err != nil {
		return err
	}
	admin, err := domain.NewUser(s.AdminEmail, "Admin User", hash)
	if err != nil {
		return err
	}
	if err := s.Store.Users().CreateUser(ctx, admin); err != nil {
		return err
	}

	adminRole, err := s.Store.Roles().GetRoleByName(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if err := s.Store.Roles().AssignRole(ctx, admin.ID, adminRole.ID); err != nil {
		return err
	}

	s.Logger.Info("admin account seeded", "email", admin.Email)
	return nil
}
