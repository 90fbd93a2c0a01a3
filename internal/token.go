package internal

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

const (
	recoveryTokenSize = 32

	// DefaultTokenPrefix namespaces recovery tokens in the token cache.
	DefaultTokenPrefix = "token"
)

// NewRecoveryToken returns 256 bits from crypto/rand, base64url encoded
// without padding.
func NewRecoveryToken() (string, error) {
	var raw [recoveryTokenSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// TokenKey builds the cache key "<prefix>_<identity>".
func TokenKey(prefix, identity string) string {
	var b strings.Builder
	b.Grow(len(prefix) + 1 + len(identity))
	b.WriteString(prefix)
	b.WriteByte('_')
	b.WriteString(identity)
	return b.String()
}

// TokensEqual compares two tokens in constant time for equal-length inputs.
func TokensEqual(presented, stored string) bool {
	if len(presented) != len(stored) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1
}
