// Package token issues invitation secrets and derives their storage digest.
// The secret travels once inside the invite link; only the digest is ever
// persisted or looked up.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const secretBytes = 32

// Service generates secrets. It is stateless; every call is independent.
type Service struct{}

func NewService() Service {
	return Service{}
}

// Issue returns a fresh secret and its digest. The secret carries 256 bits
// of entropy from crypto/rand, base64url-encoded so it is link-safe.
func (Service) Issue() (secret, digest string, err error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("read random: %w", err)
	}
	secret = base64.RawURLEncoding.EncodeToString(b)
	return secret, Digest(secret), nil
}

// Digest is the deterministic one-way mapping from a presented secret to its
// lookup key. Recovering the secret from the digest would require inverting
// SHA-256.
func Digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
