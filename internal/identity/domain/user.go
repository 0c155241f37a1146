package domain

import (
	"time"

	"github.com/feiralabs/feira/pkg/idx"
)

// User is a marketplace identity. PasswordHash is opaque to everything but
// the password hasher and must never be logged or serialized; the struct
// deliberately carries no JSON tags.
type User struct {
	ID           string
	Email        string // normalized via NormalizeEmail
	Name         string
	PasswordHash string
	IsActive     bool
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser builds a user with a fresh ULID and a normalized email. The caller
// supplies an already-hashed password; a plaintext must never survive past
// the hashing call.
func NewUser(email, name, passwordHash string) (User, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	now := time.Now().UTC()
	return User{
		ID:           idx.New().String(),
		Email:        normalized,
		Name:         name,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// SoftDelete marks the user deleted and inactive. The row stays behind for
// auditability; login treats the account as inactive from here on.
func (u *User) SoftDelete(now time.Time) {
	u.DeletedAt = &now
	u.IsActive = false
	u.UpdatedAt = now
}
