package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/token-auth/internal/domain"
	"github.com/spec-kit/token-auth/internal/repository"
)

// ErrUserNotFound is returned when a valid token names a subject that no
// longer resolves to a user.
var ErrUserNotFound = errors.New("user not found")

// UserResolver looks up the user a token subject refers to.
type UserResolver interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthGateway turns a bearer token into an authenticated identity.
type AuthGateway struct {
	validator *TokenValidator
	users     UserResolver
	logger    *zap.Logger
}

// NewAuthGateway constructs a gateway over the access token validator.
func NewAuthGateway(validator *TokenValidator, users UserResolver, logger *zap.Logger) *AuthGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthGateway{validator: validator, users: users, logger: logger}
}

// Authenticate validates the token and resolves its subject. Inactive users
// are returned as-is; blocking them is left to the caller.
func (g *AuthGateway) Authenticate(ctx context.Context, bearerToken string) (domain.Identity, error) {
	payload, err := g.validator.Validate(bearerToken)
	if err != nil {
		g.logger.Debug("token rejected", zap.String("kind", string(g.validator.Kind())), zap.Error(err))
		return domain.Identity{}, err
	}

	user, err := ResolveUser(ctx, g.users, payload.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			g.logger.Debug("token subject not found", zap.String("subject", payload.Subject))
		} else {
			g.logger.Error("resolve token subject", zap.String("subject", payload.Subject), zap.Error(err))
		}
		return domain.Identity{}, err
	}

	return user.Identity(), nil
}

// ResolveUser looks up subject, folding a miss (or a nil record) into ErrUserNotFound.
func ResolveUser(ctx context.Context, users UserResolver, subject string) (*domain.User, error) {
	user, err := users.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, subject)
		}
		return nil, fmt.Errorf("resolve user %s: %w", subject, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, subject)
	}
	return user, nil
}
