package models

import "time"

// TokenSize is the number of random bytes in a bearer token.
const TokenSize = 64

// Token is an opaque bearer token owned by a user.
type Token struct {
	UserID    string
	Value     []byte
	Expiry    *time.Time // nil means the token never expires
	Renewable bool
}

// ValidAt reports whether the token is usable at instant now.
func (t *Token) ValidAt(now time.Time) bool {
	return t.Expiry == nil || t.Expiry.After(now)
}
