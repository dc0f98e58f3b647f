// Package pendingusers persists sign-ups that are waiting for their e-mail
// address to be confirmed.
package pendingusers

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.PendingUser) error
	// Find locks the row for update. Expired rows are still returned so the
	// caller can tell "expired" from "never existed".
	Find(ctx context.Context, id string) (*models.PendingUser, error)
	Delete(ctx context.Context, id string) error
	// DeleteByUsernameOrEmail drops earlier sign-up attempts for the same
	// username or address and reports how many rows went away.
	DeleteByUsernameOrEmail(ctx context.Context, username, email string) (int64, error)
}
