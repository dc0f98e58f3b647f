// Package tokens declares the server-side repository contract for bearer
// tokens.
package tokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// Repository stores and looks up bearer tokens. Expired rows are never
// deleted; they are filtered at query time.
type Repository interface {
	// Create stores a freshly issued token.
	Create(ctx context.Context, token *models.Token) error

	// Find returns the token whose value matches exactly and that has not
	// expired at now. Missing or expired tokens yield common.ErrorNotFound.
	Find(ctx context.Context, value []byte, now time.Time) (*models.Token, error)
}
