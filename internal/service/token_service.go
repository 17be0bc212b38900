package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/token-auth/internal/auth"
)

// TokenService exchanges refresh tokens for new token pairs.
type TokenService struct {
	issuer  *auth.TokenIssuer
	refresh *auth.TokenValidator
	users   auth.UserResolver
	logger  *zap.Logger
}

// TokenDependencies encapsulates what the token service needs.
type TokenDependencies struct {
	Issuer           *auth.TokenIssuer
	RefreshValidator *auth.TokenValidator
	Users            auth.UserResolver
}

// NewTokenService builds the service.
func NewTokenService(deps TokenDependencies, logger *zap.Logger) *TokenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenService{
		issuer:  deps.Issuer,
		refresh: deps.RefreshValidator,
		users:   deps.Users,
		logger:  logger,
	}
}

// Refresh validates a refresh token and issues a new access/refresh pair for
// its subject. The subject must still resolve to a user.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	payload, err := s.refresh.Validate(refreshToken)
	if err != nil {
		return auth.TokenPair{}, err
	}

	user, err := auth.ResolveUser(ctx, s.users, payload.Subject)
	if err != nil {
		if !errors.Is(err, auth.ErrUserNotFound) {
			s.logger.Error("refresh lookup failed", zap.String("subject", payload.Subject), zap.Error(err))
		}
		return auth.TokenPair{}, err
	}

	pair, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return auth.TokenPair{}, err
	}
	s.logger.Debug("tokens refreshed", zap.String("subject", user.ID))
	return pair, nil
}
