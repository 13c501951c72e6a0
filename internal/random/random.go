// Package random generates cryptographically seeded identifier strings.
package random

import "crypto/rand"

// Alphabet is the character set for generated identifiers: URL-safe and
// case-sensitive, 62 symbols.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Alphanumeric returns a random string of n characters drawn uniformly from
// Alphabet using crypto/rand.
func Alphanumeric(n int) string {
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		// crypto/rand.Read never returns an error on supported platforms.
		_, _ = rand.Read(buf)
		for _, b := range buf {
			// Rejection sampling keeps the distribution uniform: 248 is the
			// largest multiple of len(Alphabet) that fits in a byte.
			if b >= 248 {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}
