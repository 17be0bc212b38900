package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/token-auth/internal/domain"
)

type countingRepository struct {
	inner UserRepository
	calls int
}

func (r *countingRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.calls++
	return r.inner.FindByID(ctx, id)
}

func newCache(t *testing.T, next UserRepository) (UserRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCachedUserRepository(next, client, time.Minute, nil), mr
}

func TestCachedRepositoryServesRepeatLookupsFromRedis(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	backing := &countingRepository{inner: NewMemoryUserRepository(domain.User{
		ID: "42", Email: "ada@example.com", Name: "Ada", IsActive: true, CreatedAt: created, UpdatedAt: created,
	})}
	repo, mr := newCache(t, backing)
	ctx := context.Background()

	first, err := repo.FindByID(ctx, "42")
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, "42")
	require.NoError(t, err)

	assert.Equal(t, 1, backing.calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists(userCachePrefix+"42"))
	assert.Equal(t, time.Minute, mr.TTL(userCachePrefix+"42"))
}

func TestCachedRepositoryDoesNotCacheMisses(t *testing.T) {
	backing := &countingRepository{inner: NewMemoryUserRepository()}
	repo, mr := newCache(t, backing)

	_, err := repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
	_, err = repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUserNotFound)

	assert.Equal(t, 2, backing.calls)
	assert.False(t, mr.Exists(userCachePrefix+"missing"))
}

func TestCachedRepositoryFallsBackWhenRedisDown(t *testing.T) {
	backing := &countingRepository{inner: NewMemoryUserRepository(domain.User{ID: "7", Name: "Grace"})}
	repo, mr := newCache(t, backing)
	mr.Close()

	user, err := repo.FindByID(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Grace", user.Name)
}

func TestCachedRepositoryDiscardsCorruptEntries(t *testing.T) {
	backing := &countingRepository{inner: NewMemoryUserRepository(domain.User{ID: "9", Name: "Linus"})}
	repo, mr := newCache(t, backing)
	require.NoError(t, mr.Set(userCachePrefix+"9", "{not json"))

	user, err := repo.FindByID(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "Linus", user.Name)
	assert.Equal(t, 1, backing.calls)
}

func TestNewCachedUserRepositoryWithoutClientReturnsNext(t *testing.T) {
	backing := NewMemoryUserRepository()
	assert.Same(t, UserRepository(backing), NewCachedUserRepository(backing, nil, time.Minute, nil))
}

func TestMemoryRepositoryNotFound(t *testing.T) {
	repo := NewMemoryUserRepository()
	_, err := repo.FindByID(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestCachedRepositoryServesDeletedUserUntilEntryExpires(t *testing.T) {
	memory := NewMemoryUserRepository(domain.User{ID: "42", Name: "Ada", IsActive: true})
	repo, mr := newCache(t, &countingRepository{inner: memory})
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "42")
	require.NoError(t, err)
	memory.Delete("42")

	stale, err := repo.FindByID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Ada", stale.Name)

	mr.FastForward(time.Minute)
	_, err = repo.FindByID(ctx, "42")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCachedRepositoryPicksUpChangesAfterExpiry(t *testing.T) {
	memory := NewMemoryUserRepository(domain.User{ID: "42", Email: "ada@example.com", IsActive: true})
	repo, mr := newCache(t, &countingRepository{inner: memory})
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "42")
	require.NoError(t, err)
	memory.Put(domain.User{ID: "42", Email: "ada@new.example.com", IsActive: false})

	mr.FastForward(time.Minute)
	user, err := repo.FindByID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "ada@new.example.com", user.Email)
	assert.False(t, user.IsActive)
}

func TestDisabledCacheSeesDeletionImmediately(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	memory := NewMemoryUserRepository(domain.User{ID: "42", Name: "Ada"})
	repo := NewCachedUserRepository(memory, client, 0, nil)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "42")
	require.NoError(t, err)
	memory.Delete("42")

	_, err = repo.FindByID(ctx, "42")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.False(t, mr.Exists(userCachePrefix+"42"))
}
