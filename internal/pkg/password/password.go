// Package password implements salted password digests in the form
// "<salt>$<hash>", where salt is a fresh hex-encoded random value and hash is
// the hex-encoded scrypt key derived from the plaintext and salt. The digest
// is opaque to every other package; only Verify can interpret it.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	saltLen = 16

	// scrypt parameters: interactive-login strength.
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

// Hasher turns plaintext passwords into storable digests and verifies
// plaintexts against them.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// ScryptHasher implements Hasher using scrypt as the one-way function.
type ScryptHasher struct{}

func NewHasher() *ScryptHasher {
	return &ScryptHasher{}
}

// Hash generates a fresh random salt and returns "<salt>$<hash>". Two calls
// with the same plaintext produce different digests.
func (h *ScryptHasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key, err := derive(plaintext, salt)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(key), nil
}

// Verify recomputes the digest for plaintext with the stored salt and compares
// in constant time. A digest that does not contain exactly one separator, or
// whose salt is not valid hex, fails closed: the result is false, never an
// error.
func (h *ScryptHasher) Verify(plaintext, digest string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	stored, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}

	key, err := derive(plaintext, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(key, stored) == 1
}

func derive(plaintext string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(plaintext), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}
