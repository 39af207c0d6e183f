package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes gives 256 bits of entropy per identifier.
const tokenBytes = 32

// TokenSource produces unguessable identifiers for sessions and CSRF tokens.
type TokenSource func() (string, error)

// RandomToken returns a hex encoded value read from crypto/rand.
func RandomToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// shortID trims an identifier for log output so full secrets never reach logs.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
