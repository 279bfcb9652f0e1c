package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateToken generates an opaque bearer token and its storable digest.
// The plaintext is returned to the client once; only the digest is persisted.
func GenerateToken() (plaintext, digest string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	plaintext = hex.EncodeToString(bytes)
	return plaintext, DigestToken(plaintext), nil
}

// DigestToken returns the hex-encoded SHA-256 digest of a plaintext token.
func DigestToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
