package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used for new password hashes.
const DefaultBcryptCost = 10

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

var errPasswordTooLong = errors.New("password exceeds 72 bytes")

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the given bcrypt cost.
// Out-of-range costs fall back to DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", errPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.New("failed to hash password")
	}
	return string(hash), nil
}

// Compare reports whether password matches hash. Any error, including a
// malformed hash, yields false.
func (h *PasswordHasher) Compare(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsHash reports whether value already carries the bcrypt structure.
func (h *PasswordHasher) IsHash(value string) bool {
	if !strings.HasPrefix(value, "$2a$") && !strings.HasPrefix(value, "$2b$") && !strings.HasPrefix(value, "$2y$") {
		return false
	}
	_, err := bcrypt.Cost([]byte(value))
	return err == nil
}

// HashIfNeeded hashes value unless it is already a bcrypt hash, so a stored
// record whose password did not change is never hashed twice. Passwords
// submitted by a user always go through Hash.
func (h *PasswordHasher) HashIfNeeded(value string) (string, error) {
	if h.IsHash(value) {
		return value, nil
	}
	return h.Hash(value)
}
