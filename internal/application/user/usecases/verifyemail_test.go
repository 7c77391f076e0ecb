package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcprouter/internal/infrastructure/cache"
	apperrors "mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
)

func setupClockedTokenStore(t *testing.T, now *time.Time) *cache.VerificationTokenStore {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return cache.NewVerificationTokenStoreWithClock(client, func() time.Time { return *now })
}

func TestVerifyEmail_Success(t *testing.T) {
	userRepo := &fakeUserRepo{}
	now := time.Now().UTC()
	tokenStore := setupClockedTokenStore(t, &now)
	ctx := context.Background()

	u := newTestUser(t, "alice@example.com")
	require.NoError(t, userRepo.Create(ctx, u))
	require.NoError(t, tokenStore.Create(ctx, "alice@example.com", "token-1", now.Add(15*time.Minute)))

	uc := NewVerifyEmailUseCase(userRepo, tokenStore, logger.NewLogger())

	require.NoError(t, uc.Execute(ctx, VerifyEmailCommand{Email: "alice@example.com", Token: "token-1"}))
	assert.True(t, u.IsEmailVerified())
	assert.Equal(t, 1, userRepo.updates)

	// Token is spent
	record, err := tokenStore.Get(ctx, "alice@example.com", "token-1")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestVerifyEmail_InvalidToken(t *testing.T) {
	userRepo := &fakeUserRepo{}
	now := time.Now().UTC()
	tokenStore := setupClockedTokenStore(t, &now)
	ctx := context.Background()

	u := newTestUser(t, "alice@example.com")
	require.NoError(t, userRepo.Create(ctx, u))
	require.NoError(t, tokenStore.Create(ctx, "alice@example.com", "token-1", now.Add(15*time.Minute)))

	uc := NewVerifyEmailUseCase(userRepo, tokenStore, logger.NewLogger())

	err := uc.Execute(ctx, VerifyEmailCommand{Email: "alice@example.com", Token: "wrong"})
	require.Error(t, err)
	authErr := apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeTokenInvalid, authErr.Type)
	assert.False(t, u.IsEmailVerified())
}

func TestVerifyEmail_ExpiredToken(t *testing.T) {
	userRepo := &fakeUserRepo{}
	now := time.Now().UTC()
	tokenStore := setupClockedTokenStore(t, &now)
	ctx := context.Background()

	u := newTestUser(t, "alice@example.com")
	require.NoError(t, userRepo.Create(ctx, u))
	require.NoError(t, tokenStore.Create(ctx, "alice@example.com", "token-1", now.Add(15*time.Minute)))

	// The explicit expiry governs, even though the Redis record lives on
	now = now.Add(16 * time.Minute)

	uc := NewVerifyEmailUseCase(userRepo, tokenStore, logger.NewLogger())

	err := uc.Execute(ctx, VerifyEmailCommand{Email: "alice@example.com", Token: "token-1"})
	require.Error(t, err)
	authErr := apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeTokenExpired, authErr.Type)
	assert.False(t, u.IsEmailVerified())

	// The expired token is consumed; retrying gives invalid, not expired
	err = uc.Execute(ctx, VerifyEmailCommand{Email: "alice@example.com", Token: "token-1"})
	require.Error(t, err)
	authErr = apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeTokenInvalid, authErr.Type)
}

func TestVerifyEmail_MissingFields(t *testing.T) {
	userRepo := &fakeUserRepo{}
	now := time.Now().UTC()
	tokenStore := setupClockedTokenStore(t, &now)

	uc := NewVerifyEmailUseCase(userRepo, tokenStore, logger.NewLogger())

	err := uc.Execute(context.Background(), VerifyEmailCommand{Email: "", Token: "token-1"})
	assert.Error(t, err)

	err = uc.Execute(context.Background(), VerifyEmailCommand{Email: "alice@example.com", Token: ""})
	assert.Error(t, err)
}

func TestVerifyEmail_AlreadyVerifiedIsIdempotent(t *testing.T) {
	userRepo := &fakeUserRepo{}
	now := time.Now().UTC()
	tokenStore := setupClockedTokenStore(t, &now)
	ctx := context.Background()

	u := newTestUser(t, "alice@example.com")
	require.NoError(t, u.MarkEmailVerified())
	require.NoError(t, userRepo.Create(ctx, u))
	require.NoError(t, tokenStore.Create(ctx, "alice@example.com", "token-1", now.Add(15*time.Minute)))

	uc := NewVerifyEmailUseCase(userRepo, tokenStore, logger.NewLogger())

	// A valid token against an already-verified user succeeds without
	// touching the user again
	require.NoError(t, uc.Execute(ctx, VerifyEmailCommand{Email: "alice@example.com", Token: "token-1"}))
	assert.Zero(t, userRepo.updates)
}
