package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const tokenBytes = 32

var tokenEncoding = base64.RawURLEncoding

// generateToken returns 32 random bytes encoded as unpadded base64url.
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return tokenEncoding.EncodeToString(b), nil
}

// wellFormedToken rejects values that could never have been issued, so they
// are not looked up.
func wellFormedToken(token string) bool {
	if len(token) != tokenEncoding.EncodedLen(tokenBytes) {
		return false
	}
	_, err := tokenEncoding.DecodeString(token)
	return err == nil
}
