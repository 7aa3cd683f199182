package accounts

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	goerrors "github.com/goliatone/go-errors"
)

// registrationSaltLen is the number of random bytes mixed into each key
const registrationSaltLen = 8

// DigestHasher is the default PasswordHasher: a deterministic SHA-256 hex
// digest. Equal secrets always map to equal digests, which lets login compare
// stored and supplied digests directly. Use BcryptHasher when per-hash salts
// are preferred over determinism.
type DigestHasher struct{}

// NewDigestHasher returns a deterministic SHA-256 hasher
func NewDigestHasher() DigestHasher {
	return DigestHasher{}
}

// Hash returns the SHA-256 hex digest of the supplied secret
func (DigestHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrNoEmptyString
	}
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:]), nil
}

// Compare validates the given cleartext secret against a stored digest
func (h DigestHasher) Compare(secret, digest string) error {
	d, err := h.Hash(secret)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(d), []byte(digest)) != 1 {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

// NewRegistrationKey generates a registration key by hashing the username
// together with fresh random salt. The salt comes from crypto/rand so the
// key cannot be reproduced from the username and hash function alone; the
// result is a 64 character hex token.
func NewRegistrationKey(username string) (string, error) {
	if username == "" {
		return "", ErrNoEmptyString
	}

	salt := make([]byte, registrationSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read registration key salt")
	}

	sum := sha256.Sum256(append([]byte(username), salt...))
	return hex.EncodeToString(sum[:]), nil
}
