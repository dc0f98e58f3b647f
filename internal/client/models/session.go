// Package models defines client-side data models used by the gatekeeper CLI.
package models

import "time"

// Session is the signed-in state saved between CLI runs.
type Session struct {
	Email     string
	Token     []byte
	Expiry    *time.Time // nil for tokens that never expire
	Renewable bool
}

// ExpiresWithin reports whether the token expires before now+d.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	return s.Expiry != nil && s.Expiry.Before(now.Add(d))
}
