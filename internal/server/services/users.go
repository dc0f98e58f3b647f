package services

import (
	"bytes"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/mail"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/validate"
	"github.com/google/uuid"
)

const nonceSize = 32

// SignUp parks a new account in pending_users and e-mails a verification
// link. Earlier attempts for the same username or address are dropped.
// The returned id is the future user id.
func (s *AuthService) SignUp(ctx context.Context, username, email string, passwordHash []byte) (string, error) {
	if err := validate.UserName(username); err != nil {
		return "", err
	}
	if err := validate.Email(email); err != nil {
		return "", err
	}
	if err := validate.Size("password hash", passwordHash, models.PasswordHashSize); err != nil {
		return "", err
	}

	return dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (string, error) {
		taken, err := s.repomanager.Users(tx).ExistsByUsernameOrEmail(ctx, username, email)
		if err != nil {
			return "", err
		}
		if taken {
			return "", fmt.Errorf("username or email already in use: %w", common.ErrorAlreadyExists)
		}

		salt, err := common.GenerateRandByteArray(models.SaltSize)
		if err != nil {
			return "", err
		}
		digest, err := s.hasher.Hash(ctx, passwordHash, salt)
		if err != nil {
			return "", err
		}
		nonce, err := common.GenerateRandByteArray(nonceSize)
		if err != nil {
			return "", err
		}

		pendingRepo := s.repomanager.PendingUsers(tx)
		if _, err := pendingRepo.DeleteByUsernameOrEmail(ctx, username, email); err != nil {
			return "", err
		}

		p := &models.PendingUser{
			ID:       uuid.NewString(),
			UserName: username,
			Email:    email,
			Password: digest,
			Salt:     salt,
			Nonce:    nonce,
			Expiry:   s.now().Add(s.pendingTTL),
		}
		if err := pendingRepo.Create(ctx, p); err != nil {
			return "", err
		}

		link, err := s.verificationLink(p)
		if err != nil {
			return "", err
		}
		if err := s.mailer.SendVerification(ctx, mail.Verification{To: email, UserName: username, Link: link}); err != nil {
			return "", fmt.Errorf("send verification: %w", err)
		}

		s.logger.Info(ctx, "sign-up pending verification", "pending_id", p.ID)
		return p.ID, nil
	})
}

func (s *AuthService) verificationLink(p *models.PendingUser) (string, error) {
	token, err := auth.GenerateVerificationToken(p.ID, p.Nonce, s.linkSecret, p.Expiry)
	if err != nil {
		return "", fmt.Errorf("sign verification link: %w", err)
	}
	return url.JoinPath(s.publicURL, "user", p.ID, "verify", token)
}

// VerifyEmail promotes pending user id to a verified user when token is the
// link issued for its latest sign-up attempt and has not expired.
func (s *AuthService) VerifyEmail(ctx context.Context, id, token string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}

	now := s.now()
	link, linkErr := auth.ParseVerificationToken(token, s.linkSecret, now)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		pendingRepo := s.repomanager.PendingUsers(tx)
		usersRepo := s.repomanager.Users(tx)

		p, err := pendingRepo.Find(ctx, id)
		if errors.Is(err, common.ErrorNotFound) {
			if _, err := usersRepo.GetByID(ctx, id); err == nil {
				return common.ErrAlreadyVerified
			} else if !errors.Is(err, common.ErrorNotFound) {
				return err
			}
			return common.ErrorNotFound
		}
		if err != nil {
			return err
		}

		if linkErr != nil || link.PendingID != p.ID ||
			subtle.ConstantTimeCompare(link.Nonce, p.Nonce) != 1 || !p.Expiry.After(now) {
			return fmt.Errorf("%w: token was expired or invalid, try signing up again", common.ErrValidation)
		}

		user := &models.User{
			ID:            p.ID,
			UserName:      p.UserName,
			Email:         p.Email,
			Password:      bytes.Clone(p.Password),
			Salt:          bytes.Clone(p.Salt),
			VerifiedEmail: true,
		}
		if _, err := usersRepo.Create(ctx, user); err != nil {
			return err
		}
		if err := pendingRepo.Delete(ctx, p.ID); err != nil {
			return err
		}

		s.logger.Info(ctx, "e-mail verified", "user_id", user.ID)
		return nil
	})
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}
