package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/token-auth/internal/clock"
	"github.com/spec-kit/token-auth/internal/config"
	"github.com/spec-kit/token-auth/internal/domain"
	"github.com/spec-kit/token-auth/internal/repository"
)

type resolverFunc func(ctx context.Context, id string) (*domain.User, error)

func (f resolverFunc) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return f(ctx, id)
}

func TestAuthenticateProjectsUser(t *testing.T) {
	clk := clock.NewManual(t0)
	tokens := newTestTokens(t, clk)
	id := uuid.NewString()
	users := repository.NewMemoryUserRepository(domain.User{
		ID:        id,
		Email:     "ada@example.com",
		Name:      "Ada Lovelace",
		IsActive:  true,
		CreatedAt: t0,
	})
	gateway := NewAuthGateway(tokens.Access, users, nil)

	issued, err := tokens.Issuer.IssueAccessToken(id)
	require.NoError(t, err)

	identity, err := gateway.Authenticate(context.Background(), issued.Value)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{ID: id, Email: "ada@example.com", Name: "Ada Lovelace", IsActive: true}, identity)
}

func TestAuthenticateAllowsInactiveUser(t *testing.T) {
	tokens := newTestTokens(t, clock.NewManual(t0))
	users := repository.NewMemoryUserRepository(domain.User{ID: "42", Email: "off@example.com", Name: "Off", IsActive: false})
	gateway := NewAuthGateway(tokens.Access, users, nil)

	issued, err := tokens.Issuer.IssueAccessToken("42")
	require.NoError(t, err)

	identity, err := gateway.Authenticate(context.Background(), issued.Value)
	require.NoError(t, err)
	assert.False(t, identity.IsActive)
}

func TestAuthenticateUserNotFound(t *testing.T) {
	tokens := newTestTokens(t, clock.NewManual(t0))
	gateway := NewAuthGateway(tokens.Access, repository.NewMemoryUserRepository(), nil)

	issued, err := tokens.Issuer.IssueAccessToken("42")
	require.NoError(t, err)

	_, err = gateway.Authenticate(context.Background(), issued.Value)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthenticateNilRecordIsNotFound(t *testing.T) {
	tokens := newTestTokens(t, clock.NewManual(t0))
	gateway := NewAuthGateway(tokens.Access, resolverFunc(func(context.Context, string) (*domain.User, error) {
		return nil, nil
	}), nil)

	issued, err := tokens.Issuer.IssueAccessToken("42")
	require.NoError(t, err)

	_, err = gateway.Authenticate(context.Background(), issued.Value)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthenticatePropagatesResolverFailure(t *testing.T) {
	tokens := newTestTokens(t, clock.NewManual(t0))
	boom := errors.New("connection reset")
	gateway := NewAuthGateway(tokens.Access, resolverFunc(func(context.Context, string) (*domain.User, error) {
		return nil, boom
	}), nil)

	issued, err := tokens.Issuer.IssueAccessToken("42")
	require.NoError(t, err)

	_, err = gateway.Authenticate(context.Background(), issued.Value)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestAuthenticateSkipsLookupForRejectedTokens(t *testing.T) {
	clk := clock.NewManual(t0)
	tokens := newTestTokens(t, clk)
	calls := 0
	gateway := NewAuthGateway(tokens.Access, resolverFunc(func(context.Context, string) (*domain.User, error) {
		calls++
		return &domain.User{ID: "42"}, nil
	}), nil)

	_, err := gateway.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	issued, err := tokens.Issuer.IssueAccessToken("42")
	require.NoError(t, err)
	clk.Advance(time.Hour)
	_, err = gateway.Authenticate(context.Background(), issued.Value)
	assert.ErrorIs(t, err, ErrExpiredToken)

	assert.Zero(t, calls)
}

func TestAuthenticateRejectsRefreshToken(t *testing.T) {
	tokens := newTestTokens(t, clock.NewManual(t0))
	gateway := NewAuthGateway(tokens.Access, repository.NewMemoryUserRepository(domain.User{ID: "42"}), nil)

	refresh, err := tokens.Issuer.IssueRefreshToken("42")
	require.NoError(t, err)

	_, err = gateway.Authenticate(context.Background(), refresh.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateDeletedUserWithDefaultCacheConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens := newTestTokens(t, clock.NewManual(t0))
	users := repository.NewMemoryUserRepository(domain.User{ID: "42", Name: "Ada", IsActive: true})
	resolver := repository.NewCachedUserRepository(users, client, config.RedisConfig{}.UserCacheTTL(), nil)
	gateway := NewAuthGateway(tokens.Access, resolver, nil)

	issued, err := tokens.Issuer.IssueAccessToken("42")
	require.NoError(t, err)

	_, err = gateway.Authenticate(context.Background(), issued.Value)
	require.NoError(t, err)

	users.Delete("42")
	_, err = gateway.Authenticate(context.Background(), issued.Value)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
