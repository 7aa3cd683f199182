package accounts

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher is a PasswordHasher backed by bcrypt. Digests are salted per
// call, so equal secrets produce different digests; only Compare can check a
// stored hash. Pick this over DigestHasher when digest equality across calls
// is not required.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt hasher; cost <= 0 selects the default
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = passwordHashCost()
	}
	return &BcryptHasher{cost: cost}
}

// Hash will generate a password hash
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(b), err
}

// Compare will validate the given cleartext password matches the hashed
// password
func (h *BcryptHasher) Compare(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
