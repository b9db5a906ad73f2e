package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...string) string {
	// NUL cannot appear in TeX or backend names, so the join is unambiguous.
	return prefix + ":" + Hash([]byte(strings.Join(parts, "\x00")))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
