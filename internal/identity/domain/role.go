package domain

import "time"

// Role names every installation ships with. They are referenced by
// authorization rules and the registration flow, so deleting them would
// break running systems; RolesService refuses to.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleMember   = "member"
	RoleCustomer = "customer"
)

var systemRoles = map[string]struct{}{
	RoleAdmin:    {},
	RoleManager:  {},
	RoleMember:   {},
	RoleCustomer: {},
}

// IsSystemRole reports whether name belongs to the protected built-in set.
func IsSystemRole(name string) bool {
	_, ok := systemRoles[name]
	return ok
}

type Role struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
