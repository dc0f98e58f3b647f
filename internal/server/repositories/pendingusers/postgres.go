package pendingusers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.PendingUser) error {
	query := `
		INSERT INTO pending_users (id, username, email, password, salt, nonce, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.UserName, p.Email, p.Password, p.Salt, p.Nonce, p.Expiry); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.PendingUser, error) {
	query := `
		SELECT id, username, email, password, salt, nonce, expires_at
		FROM pending_users
		WHERE id = $1
		FOR UPDATE
	`
	p := &models.PendingUser{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.UserName, &p.Email, &p.Password, &p.Salt, &p.Nonce, &p.Expiry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM pending_users
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByUsernameOrEmail(ctx context.Context, username, email string) (int64, error) {
	query := `
		DELETE FROM pending_users
		WHERE username = $1 OR email = $2
	`
	res, err := r.db.ExecContext(ctx, query, username, email)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
