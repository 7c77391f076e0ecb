package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcprouter/internal/domain/user"
	"mcprouter/internal/infrastructure/auth"
	apperrors "mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
)

func seedSessionUser(t *testing.T, repo *fakeUserRepo) *user.User {
	t.Helper()
	u, err := user.NewUser("alice@example.com", "Alice", func() (string, error) {
		return "usr_refresh01", nil
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestRefreshSession_RotatesTokenPair(t *testing.T) {
	userRepo := &fakeUserRepo{}
	u := seedSessionUser(t, userRepo)
	jwtService := auth.NewJWTService("test-secret", 60, 30)

	pair, err := jwtService.Generate(u.SID(), string(u.Role()))
	require.NoError(t, err)

	uc := NewRefreshSessionUseCase(userRepo, jwtService, logger.NewLogger())
	result, err := uc.Execute(context.Background(), RefreshSessionCommand{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)

	claims, err := jwtService.Verify(result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.SID(), claims.UserSID)
	assert.Equal(t, auth.TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
}

func TestRefreshSession_RejectsAccessToken(t *testing.T) {
	userRepo := &fakeUserRepo{}
	u := seedSessionUser(t, userRepo)
	jwtService := auth.NewJWTService("test-secret", 60, 30)

	pair, err := jwtService.Generate(u.SID(), string(u.Role()))
	require.NoError(t, err)

	uc := NewRefreshSessionUseCase(userRepo, jwtService, logger.NewLogger())
	_, err = uc.Execute(context.Background(), RefreshSessionCommand{RefreshToken: pair.AccessToken})
	require.Error(t, err, "an access token must not mint new tokens")
	authErr := apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeInvalidCredentials, authErr.Type)
}

func TestRefreshSession_RejectsGarbage(t *testing.T) {
	uc := NewRefreshSessionUseCase(&fakeUserRepo{}, auth.NewJWTService("test-secret", 60, 30), logger.NewLogger())

	_, err := uc.Execute(context.Background(), RefreshSessionCommand{RefreshToken: "not.a.token"})
	assert.Error(t, err)

	_, err = uc.Execute(context.Background(), RefreshSessionCommand{})
	assert.Error(t, err)
}

func TestRefreshSession_RejectsUnknownAccount(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 60, 30)
	pair, err := jwtService.Generate("usr_gone", "user")
	require.NoError(t, err)

	uc := NewRefreshSessionUseCase(&fakeUserRepo{}, jwtService, logger.NewLogger())
	_, err = uc.Execute(context.Background(), RefreshSessionCommand{RefreshToken: pair.RefreshToken})
	require.Error(t, err)
	authErr := apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeInvalidCredentials, authErr.Type)
}
