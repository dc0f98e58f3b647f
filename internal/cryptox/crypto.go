// Package cryptox holds the client-side password pre-hash.
package cryptox

import (
	"crypto/sha256"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PrehashSize is the length of the value sent to the server instead of the
// password.
const PrehashSize = 64

const prehashDomain = "gatekeeper/prehash/v1:"

// PrehashSalt derives the per-account salt from the e-mail address, so the
// same password yields different pre-hashes for different accounts.
func PrehashSalt(email string) []byte {
	sum := sha256.Sum256([]byte(prehashDomain + strings.ToLower(strings.TrimSpace(email))))
	return sum[:]
}

// PrehashPassword stretches password with Argon2id. The server never sees
// the password itself, only this digest, which it hashes again with its own
// salt.
func PrehashPassword(email string, password []byte) []byte {
	return argon2.IDKey(password, PrehashSalt(email), 1, 64*1024, 4, PrehashSize)
}
