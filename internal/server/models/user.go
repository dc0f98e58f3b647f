// Package models defines server-side data models shared by services,
// repositories and transports.
package models

import "time"

const (
	// DigestSize is the length of a stored password digest.
	DigestSize = 64
	// SaltSize is the length of a per-user password salt.
	SaltSize = 64
	// PasswordHashSize is the length of the client-side password pre-hash.
	PasswordHashSize = 64
)

// User is a verified account as stored in the users table.
type User struct {
	ID            string
	UserName      string
	Email         string
	Password      []byte // Argon2id digest, DigestSize bytes
	Salt          []byte // SaltSize bytes
	Permissions   Permission
	Trust         int32
	VerifiedEmail bool
	CreatedAt     time.Time
}

// Credential is the projection of User needed to check a password.
type Credential struct {
	UserID string
	Email  string
	Digest []byte
	Salt   []byte
}

// PendingUser is a sign-up waiting for its e-mail address to be confirmed.
type PendingUser struct {
	ID       string
	UserName string
	Email    string
	Password []byte
	Salt     []byte
	// Nonce must match the one embedded in the verification link.
	Nonce  []byte
	Expiry time.Time
}

// Profile is what a user sees about themselves.
type Profile struct {
	ID          string     `json:"id"`
	UserName    string     `json:"username"`
	Email       string     `json:"email"`
	Permissions Permission `json:"permissions"`
	Trust       int32      `json:"trust"`
}

// PublicProfile is what everybody else sees.
type PublicProfile struct {
	ID       string `json:"id"`
	UserName string `json:"username"`
}

func (u *User) Profile() *Profile {
	return &Profile{ID: u.ID, UserName: u.UserName, Email: u.Email, Permissions: u.Permissions, Trust: u.Trust}
}

func (u *User) PublicProfile() *PublicProfile {
	return &PublicProfile{ID: u.ID, UserName: u.UserName}
}

// ViewFor returns the full profile when viewerID owns the account and the
// public profile otherwise.
func (u *User) ViewFor(viewerID string) any {
	if viewerID == u.ID {
		return u.Profile()
	}
	return u.PublicProfile()
}
