package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const refreshTokenSize = 48

// NewRefreshToken creates a cryptographically random opaque token, URL-safe
// encoded. The raw value is handed to the client exactly once and is never
// stored or logged.
func NewRefreshToken() (string, error) {
	raw := make([]byte, refreshTokenSize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// FingerprintToken returns the SHA-256 hex digest of a raw token. The
// fingerprint is the only persisted representation and doubles as the
// lookup key. An unkeyed hash is adequate because the input space is large
// random tokens, not low-entropy secrets.
func FingerprintToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
