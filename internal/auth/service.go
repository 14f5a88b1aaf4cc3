package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/jbkit/internal/common"
	"github.com/dmitrijs2005/jbkit/internal/dbx"
	"github.com/dmitrijs2005/jbkit/internal/logging"
	"github.com/dmitrijs2005/jbkit/internal/models"
	"github.com/dmitrijs2005/jbkit/internal/repositories/users"
)

// Service exchanges credentials for tokens and tokens for live users.
type Service struct {
	users    users.Repository
	secret   []byte
	validity time.Duration
	logger   logging.Logger
}

func NewService(repo users.Repository, secret []byte, validity time.Duration, l logging.Logger) *Service {
	if l == nil {
		l = logging.Discard()
	}
	return &Service{users: repo, secret: secret, validity: validity, logger: l}
}

// Login checks the credential of the live user owning email and returns a
// token for it.
func (s *Service) Login(ctx context.Context, db dbx.DBTX, email, password string) (string, error) {
	u, err := s.users.GetByEmail(ctx, db, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", err
	}
	if !u.IsCorrectPassword(password) {
		s.logger.Info(ctx, "login rejected", "user_id", u.ID)
		return "", common.ErrorUnauthorized
	}
	return s.IssueToken(u)
}

// IssueToken returns a token for a persisted user.
func (s *Service) IssueToken(u *models.User) (string, error) {
	if !u.Persisted() {
		return "", common.ErrNotPersisted
	}
	return GenerateToken(u.ID, s.secret, s.validity)
}

// Resolve loads the user a token was issued for. Tokens of soft-deleted or
// unknown users resolve to common.ErrorNotFound.
func (s *Service) Resolve(ctx context.Context, db dbx.DBTX, token string) (*models.User, error) {
	id, err := GetUserIDFromToken(token, s.secret)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if u.IsDeleted() {
		return nil, common.ErrorNotFound
	}
	return u, nil
}
