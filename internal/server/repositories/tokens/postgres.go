package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.Token) error {
	query := `
		INSERT INTO tokens (token, user_id, expires_at, renewable)
		VALUES ($1, $2, $3, $4)
	`
	var expiry sql.NullTime
	if token.Expiry != nil {
		expiry = sql.NullTime{Time: *token.Expiry, Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, query, token.Value, token.UserID, expiry, token.Renewable); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, value []byte, now time.Time) (*models.Token, error) {
	query := `
		SELECT user_id, expires_at, renewable
		FROM tokens
		WHERE token = $1 AND (expires_at IS NULL OR expires_at > $2)
	`
	token := &models.Token{Value: append([]byte(nil), value...)}
	var expiry sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, value, now).Scan(&token.UserID, &expiry, &token.Renewable); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if expiry.Valid {
		token.Expiry = &expiry.Time
	}
	return token, nil
}
