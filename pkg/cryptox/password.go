package cryptox

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor. Cost 10 lands in the tens of
// milliseconds on commodity hardware, slow enough to blunt offline guessing
// without making login noticeably laggy.
const PasswordCost = 10

// ErrEmptyPassword is returned when asked to hash an empty string.
var ErrEmptyPassword = errors.New("cryptox: password is empty")

// HashPassword hashes a plaintext password with bcrypt. Each call salts
// independently, so two hashes of the same password never compare equal as
// strings; use VerifyPassword instead.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
// A malformed or truncated hash verifies as false rather than erroring,
// so a corrupt row can never fail open.
func VerifyPassword(password, encodedHash string) bool {
	if encodedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}

// dummyHash is a bcrypt hash of a throwaway value. Comparing against it
// costs the same as a real verification.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// VerifyDummy burns one bcrypt verification and discards the result.
// Login calls this when the account does not exist so the not-found path
// takes as long as a wrong-password path.
func VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
