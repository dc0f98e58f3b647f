// Package services contains server-side business logic. AuthService signs
// users in and up; sign-in is hardened against timing attacks.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/mail"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gatekeeper/internal/server/tokens"
	"github.com/dmitrijs2005/gatekeeper/internal/validate"
)

// PasswordHasher derives the stored digest of a client password pre-hash.
// *hasher.Pool implements it.
type PasswordHasher interface {
	Hash(ctx context.Context, password, salt []byte) ([]byte, error)
}

// AuthService provides authentication-related operations:
//   - SignIn: check credentials and issue a bearer token
//   - SignUp: park a new account until its e-mail is confirmed
//   - VerifyEmail: promote a pending account to a user
//   - GetUser: load a user for display
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	policy      *tokens.Policy
	mailer      mail.Sender
	logger      logging.Logger

	padding    time.Duration
	pendingTTL time.Duration
	linkSecret []byte
	publicURL  string

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, h PasswordHasher, policy *tokens.Policy,
	mailer mail.Sender, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      h,
		policy:      policy,
		mailer:      mailer,
		logger:      logger.With("module", "auth"),
		padding:     cfg.SignInPadding,
		pendingTTL:  cfg.PendingUserTTL,
		linkSecret:  []byte(cfg.SecretKey),
		publicURL:   cfg.PublicURL,
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// SignIn checks email and passwordHash and returns a freshly stored token.
//
// Malformed input fails fast with common.ErrValidation. Unknown e-mail and
// wrong password both return common.ErrAuthenticationFailed, and both are
// padded to the same wall-clock time measured from the end of validation.
// common.ErrResourceExhausted (no hasher slot) is returned unpadded.
func (s *AuthService) SignIn(ctx context.Context, email string, passwordHash []byte, renewable bool) (*models.Token, error) {
	if err := validate.Email(email); err != nil {
		return nil, err
	}
	if err := validate.Size("password hash", passwordHash, models.PasswordHashSize); err != nil {
		return nil, err
	}

	start := s.now()

	token, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Token, error) {
		cred, err := s.repomanager.Users(tx).FindCredentialByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrAuthenticationFailed
			}
			return nil, fmt.Errorf("find credential: %w", err)
		}
		if len(cred.Salt) != models.SaltSize || len(cred.Digest) != models.DigestSize {
			return nil, fmt.Errorf("%w: corrupt credential for user %s", common.ErrorInternal, cred.UserID)
		}

		digest, err := s.hasher.Hash(ctx, passwordHash, cred.Salt)
		if err != nil {
			return nil, err
		}
		if subtle.ConstantTimeCompare(digest, cred.Digest) != 1 {
			return nil, common.ErrAuthenticationFailed
		}

		token, err := s.policy.Issue(cred.UserID, renewable)
		if err != nil {
			return nil, err
		}
		if err := s.repomanager.Tokens(tx).Create(ctx, token); err != nil {
			return nil, fmt.Errorf("store token: %w", err)
		}
		return token, nil
	})

	if errors.Is(err, common.ErrAuthenticationFailed) {
		s.pad(ctx, start)
		return nil, common.ErrAuthenticationFailed
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

// pad sleeps until padding has elapsed since start.
func (s *AuthService) pad(ctx context.Context, start time.Time) {
	elapsed := s.now().Sub(start)
	if elapsed >= s.padding {
		if s.padding > 0 {
			s.logger.Warn(ctx, "sign-in took longer than its padding, timing is observable",
				"elapsed", elapsed, "padding", s.padding)
		}
		return
	}
	s.sleep(ctx, s.padding-elapsed)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
