// Package service implements user registration and lookup.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pinky/internal/user/models"
	"pinky/internal/user/store"
	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
	"pinky/pkg/platform/sentinel"
	"pinky/pkg/requestcontext"
)

// accessTokenTTL is how long a registration token stays valid.
const accessTokenTTL = 24 * time.Hour

// TokenIssuer mints access tokens for newly registered users.
type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, expiresIn time.Duration) (string, error)
}

type Service struct {
	users  store.Store
	tokens TokenIssuer
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(users store.Store, tokens TokenIssuer, opts ...Option) (*Service, error) {
	if users == nil || tokens == nil {
		return nil, fmt.Errorf("user store and token issuer are required")
	}
	svc := &Service{
		users:  users,
		tokens: tokens,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register creates a user with a zero balance and returns an access token.
func (s *Service) Register(ctx context.Context, req models.CreateUserRequest) (*models.User, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	now := requestcontext.Now(ctx)
	user := &models.User{
		ID:        id.NewUserID(),
		Nickname:  strings.TrimSpace(req.Nickname),
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, "", dErrors.New(dErrors.CodeConflict, "user already exists")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, accessTokenTTL)
	if err != nil {
		s.logger.ErrorContext(ctx, "token issue failed", "user_id", user.ID.String(), "error", err)
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	return user, token, nil
}

// Get loads a user by ID.
func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}
