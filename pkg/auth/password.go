package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	saltSize = 16
	keySize  = 64

	// scrypt cost parameters. N is the CPU/memory cost, r the block size,
	// p the parallelization factor.
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// HashPassword derives a scrypt key from the password under a fresh random
// salt and returns "saltHex:keyHex". Two calls with the same password
// produce different records.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	saltHex := hex.EncodeToString(salt)
	key, err := scrypt.Key([]byte(password), []byte(saltHex), scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}

	return saltHex + ":" + hex.EncodeToString(key), nil
}

// CheckPasswordHash reports whether password matches the stored record.
// A malformed record is a verification failure, not an error. The stored
// and recomputed keys are compared in constant time.
func CheckPasswordHash(password, record string) bool {
	salt, storedHex, ok := strings.Cut(record, ":")
	if !ok || salt == "" || storedHex == "" {
		return false
	}

	stored, err := hex.DecodeString(storedHex)
	if err != nil {
		return false
	}

	derived, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return false
	}

	if len(derived) != len(stored) {
		return false
	}
	return subtle.ConstantTimeCompare(derived, stored) == 1
}
