package tokens

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/repomanager"
)

// Service resolves presented tokens and renews them.
type Service struct {
	db     dbx.DBTX
	repos  repomanager.RepositoryManager
	policy *Policy
	logger logging.Logger
}

func NewService(db dbx.DBTX, repos repomanager.RepositoryManager, policy *Policy, logger logging.Logger) *Service {
	return &Service{db: db, repos: repos, policy: policy, logger: logger.With("module", "tokens")}
}

func (s *Service) Policy() *Policy { return s.policy }

// Resolve returns the stored token matching raw byte for byte. Unknown,
// malformed or expired tokens yield common.ErrorUnauthorized.
func (s *Service) Resolve(ctx context.Context, raw []byte) (*models.Token, error) {
	if len(raw) != models.TokenSize {
		return nil, common.ErrorUnauthorized
	}

	t, err := s.repos.Tokens(s.db).Find(ctx, raw, s.policy.Now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}

	// the query already filtered on expiry; guard against clock skew with the DB
	if !s.policy.Valid(t) {
		return nil, common.ErrorUnauthorized
	}
	return t, nil
}

// Validate returns the owner of raw.
func (s *Service) Validate(ctx context.Context, raw []byte) (string, error) {
	t, err := s.Resolve(ctx, raw)
	if err != nil {
		return "", err
	}
	return t.UserID, nil
}

// Renew issues a brand new renewable token for userID. The token used to
// ask for it is left untouched and expires on its own schedule.
func (s *Service) Renew(ctx context.Context, userID string) (*models.Token, error) {
	t, err := s.policy.Issue(userID, true)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Tokens(s.db).Create(ctx, t); err != nil {
		return nil, fmt.Errorf("store renewed token: %w", err)
	}
	s.logger.Debug(ctx, "token renewed", "user_id", userID)
	return t, nil
}
