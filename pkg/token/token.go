// Package token generates the bearer tokens embedded in public booking links.
// A token is the sole credential for invite-scoped access, so it must be
// unguessable; there is no session or user model behind it.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const MinBytes = 16

// New returns a URL-safe random token with n bytes of entropy.
func New(n int) (string, error) {
	if n < MinBytes {
		n = MinBytes
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
