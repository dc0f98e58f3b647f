// Package users declares and implements persistence for verified accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

type Repository interface {
	// Create inserts a verified user under user.ID and fills in CreatedAt.
	// A taken username or email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// FindCredentialByEmail locks the row for share until the surrounding
	// transaction ends.
	FindCredentialByEmail(ctx context.Context, email string) (*models.Credential, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}
