package domain

import "time"

// RefreshSession is the persisted record of one outstanding refresh token.
// The raw token never hits the database; TokenHash is its SHA-256
// fingerprint and doubles as the primary key. Rotation and logout only ever
// flip Revoked; rows are not deleted by any auth operation.
type RefreshSession struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    time.Duration `json:"-"`
}

// IdentitySummary is the public view of a user returned alongside tokens.
type IdentitySummary struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}
