package client

import (
	"context"
	"time"
)

// Token is what the server hands out on sign-in and renewal.
type Token struct {
	Value     []byte
	Expiry    *time.Time
	Renewable bool
}

// Upload is a presigned PUT handed out by the server.
type Upload struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// Client is the remote API used by the CLI services.
type Client interface {
	SignIn(ctx context.Context, email string, passwordHash []byte, allowRenew bool) (*Token, error)
	SignUp(ctx context.Context, username, email string, passwordHash []byte) error
	Renew(ctx context.Context, token []byte) (*Token, error)
	Validate(ctx context.Context, token []byte) (string, error)
	AvatarUpload(ctx context.Context, token []byte) (*Upload, error)
	Ping(ctx context.Context) error
	Close() error
}
