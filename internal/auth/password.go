package auth

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashPassword returns base64(SHA-256(password)).
//
// The digest is unsalted and deterministic so stored hashes stay comparable across
// restarts and with stores written by earlier server versions. Unsalted SHA-256 is
// weak against offline guessing; switching to a salted KDF needs a login flow
// that can compare against the stored value.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}
