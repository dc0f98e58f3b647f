// Package services contains application services for the gatekeeper CLI.
// AuthService signs the user up and in and keeps the session in the local
// database between runs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/client/client"
	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
	"github.com/dmitrijs2005/gatekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/cryptox"
	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
)

// ErrNotSignedIn is returned when no session is saved.
var ErrNotSignedIn = errors.New("not signed in")

const (
	keyEmail     = "email"
	keyToken     = "token"
	keyExpiry    = "expiry"
	keyRenewable = "renewable"
)

// AuthService defines authentication operations for the CLI.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	SignUp(ctx context.Context, username, email string, password []byte) error
	SignIn(ctx context.Context, email string, password []byte, allowRenew bool) (*models.Session, error)
	Renew(ctx context.Context) (*models.Session, error)
	Validate(ctx context.Context) (string, error)
	Session(ctx context.Context) (*models.Session, error)
	SignOut(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
	now    func() time.Time
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db, now: time.Now}
}

// SignUp pre-hashes password and asks the server to send a verification
// e-mail. Nothing is saved locally.
func (a *authService) SignUp(ctx context.Context, username, email string, password []byte) error {
	hash := cryptox.PrehashPassword(email, password)
	defer common.WipeByteArray(hash)

	if err := a.client.SignUp(ctx, username, email, hash); err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	return nil
}

func (a *authService) SignIn(ctx context.Context, email string, password []byte, allowRenew bool) (*models.Session, error) {
	hash := cryptox.PrehashPassword(email, password)
	defer common.WipeByteArray(hash)

	tok, err := a.client.SignIn(ctx, email, hash, allowRenew)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	s := &models.Session{Email: email, Token: tok.Value, Expiry: tok.Expiry, Renewable: tok.Renewable}
	if err := a.save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Renew swaps the saved token for a fresh one. The saved token must be
// renewable.
func (a *authService) Renew(ctx context.Context) (*models.Session, error) {
	s, err := a.Session(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Renewable {
		return nil, client.ErrForbidden
	}

	tok, err := a.client.Renew(ctx, s.Token)
	if err != nil {
		return nil, fmt.Errorf("renew: %w", err)
	}

	s.Token, s.Expiry, s.Renewable = tok.Value, tok.Expiry, tok.Renewable
	if err := a.save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Validate checks the saved token with the server and returns its user id.
// A token the server rejects is forgotten.
func (a *authService) Validate(ctx context.Context) (string, error) {
	s, err := a.Session(ctx)
	if err != nil {
		return "", err
	}

	id, err := a.client.Validate(ctx, s.Token)
	if errors.Is(err, client.ErrUnauthorized) {
		if cerr := a.SignOut(ctx); cerr != nil {
			return "", cerr
		}
		return "", ErrNotSignedIn
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (a *authService) Session(ctx context.Context) (*models.Session, error) {
	repo := metadata.NewSQLiteRepository(a.db)

	tok, err := repo.Get(ctx, keyToken)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, err
	}

	s := &models.Session{Token: tok}

	email, err := repo.Get(ctx, keyEmail)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	s.Email = string(email)

	renewable, err := repo.Get(ctx, keyRenewable)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	s.Renewable = string(renewable) == "1"

	expiry, err := repo.Get(ctx, keyExpiry)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if len(expiry) > 0 {
		exp, err := time.Parse(time.RFC3339, string(expiry))
		if err != nil {
			return nil, fmt.Errorf("saved expiry: %w", err)
		}
		s.Expiry = &exp
	}

	if s.Expiry != nil && !s.Expiry.After(a.now()) {
		return nil, ErrNotSignedIn
	}
	return s, nil
}

func (a *authService) SignOut(ctx context.Context) error {
	return metadata.NewSQLiteRepository(a.db).Clear(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

// save replaces the session in a single transaction.
func (a *authService) save(ctx context.Context, s *models.Session) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}

		renewable := "0"
		if s.Renewable {
			renewable = "1"
		}
		values := map[string][]byte{
			keyEmail:     []byte(s.Email),
			keyToken:     s.Token,
			keyRenewable: []byte(renewable),
		}
		if s.Expiry != nil {
			values[keyExpiry] = []byte(s.Expiry.UTC().Format(time.RFC3339))
		}

		for k, v := range values {
			if err := repo.Set(ctx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}
