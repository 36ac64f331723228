package handlers

import (
	"crypto/rand"
	"encoding/base64"
)

// newToken returns a random URL-safe token of the given length. Used for
// both per-session API keys and blog verification tokens.
func newToken(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:length]
}
