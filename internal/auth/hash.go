package auth

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashToken hashes an API token plaintext for storage and lookup. SHA-256 is
// deliberate: tokens are high-entropy random strings, unlike user-chosen
// passwords, so a memory-hard hash would add cost without adding security.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return base64.StdEncoding.EncodeToString(sum[:])
}
