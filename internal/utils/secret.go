package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RandomSecret returns n random bytes encoded for use as an HMAC signing
// secret when none is configured.
func RandomSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
