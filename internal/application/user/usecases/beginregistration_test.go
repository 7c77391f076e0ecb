package usecases

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcprouter/internal/domain/user"
	"mcprouter/internal/infrastructure/auth"
	"mcprouter/internal/infrastructure/cache"
	sharedconfig "mcprouter/internal/shared/config"
	apperrors "mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
)

// fakeCredentialRepo is an in-memory user.PasskeyCredentialRepository.
type fakeCredentialRepo struct {
	credentials []*user.PasskeyCredential
	deleted     []string
}

func (r *fakeCredentialRepo) Create(ctx context.Context, c *user.PasskeyCredential) error {
	r.credentials = append(r.credentials, c)
	return nil
}

func (r *fakeCredentialRepo) GetByCredentialID(ctx context.Context, credentialID []byte) (*user.PasskeyCredential, error) {
	for _, c := range r.credentials {
		if string(c.CredentialID()) == string(credentialID) {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCredentialRepo) GetByUserID(ctx context.Context, userID uint) ([]*user.PasskeyCredential, error) {
	var matched []*user.PasskeyCredential
	for _, c := range r.credentials {
		if c.UserID() == userID {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (r *fakeCredentialRepo) Update(ctx context.Context, c *user.PasskeyCredential) error {
	return nil
}

func (r *fakeCredentialRepo) DeleteBySID(ctx context.Context, sid string, userID uint) (bool, error) {
	owned := 0
	for _, c := range r.credentials {
		if c.UserID() == userID {
			owned++
		}
	}
	for i, c := range r.credentials {
		if c.SID() == sid && c.UserID() == userID {
			if owned <= 1 {
				return false, user.ErrLastCredential
			}
			r.credentials = append(r.credentials[:i], r.credentials[i+1:]...)
			r.deleted = append(r.deleted, sid)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCredentialRepo) ExistsByCredentialID(ctx context.Context, credentialID []byte) (bool, error) {
	c, _ := r.GetByCredentialID(ctx, credentialID)
	return c != nil, nil
}

func setupWebAuthn(t *testing.T) *auth.WebAuthnService {
	t.Helper()
	svc, err := auth.NewWebAuthnService(sharedconfig.WebAuthnConfig{
		RPID:      "localhost",
		RPName:    "Test RP",
		RPOrigins: []string{"http://localhost:3000"},
	})
	require.NoError(t, err)
	return svc
}

func setupChallengeStore(t *testing.T) *cache.ChallengeStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return cache.NewChallengeStore(client)
}

func TestBeginRegistration_Signup(t *testing.T) {
	userRepo := &fakeUserRepo{}
	credentialRepo := &fakeCredentialRepo{}
	challengeStore := setupChallengeStore(t)

	uc := NewBeginRegistrationUseCase(userRepo, credentialRepo, setupWebAuthn(t), challengeStore, logger.NewLogger())
	ctx := context.Background()

	result, err := uc.Execute(ctx, BeginRegistrationCommand{
		Mode:        "signup",
		Email:       "alice@example.com",
		Name:        "Alice",
		PasskeyName: "MacBook",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Options)
	assert.NotEmpty(t, result.SessionID)
	assert.NotEmpty(t, result.Options.Response.Challenge)

	// The ceremony state is parked under the returned session id
	data, err := challengeStore.ClaimRegistration(ctx, result.SessionID)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, cache.RegistrationModeSignup, data.Mode)
	assert.Equal(t, "alice@example.com", data.PendingEmail)
	assert.Equal(t, "Alice", data.PendingName)
	assert.Equal(t, "MacBook", data.PasskeyName)
	assert.Zero(t, data.UserID)
}

func TestBeginRegistration_SignupRequiresEmail(t *testing.T) {
	uc := NewBeginRegistrationUseCase(&fakeUserRepo{}, &fakeCredentialRepo{}, setupWebAuthn(t), setupChallengeStore(t), logger.NewLogger())

	_, err := uc.Execute(context.Background(), BeginRegistrationCommand{Mode: "signup"})
	require.Error(t, err)
	authErr := apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeEmailRequired, authErr.Type)
}

func TestBeginRegistration_SignupVerifiedEmailRejected(t *testing.T) {
	userRepo := &fakeUserRepo{}
	ctx := context.Background()

	u := newTestUser(t, "alice@example.com")
	require.NoError(t, u.MarkEmailVerified())
	require.NoError(t, userRepo.Create(ctx, u))

	uc := NewBeginRegistrationUseCase(userRepo, &fakeCredentialRepo{}, setupWebAuthn(t), setupChallengeStore(t), logger.NewLogger())

	_, err := uc.Execute(ctx, BeginRegistrationCommand{Mode: "signup", Email: "alice@example.com"})
	require.Error(t, err)
	authErr := apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeAlreadyRegistered, authErr.Type)
}

func TestBeginRegistration_SignupUnverifiedEmailMayRetry(t *testing.T) {
	userRepo := &fakeUserRepo{}
	ctx := context.Background()

	u := newTestUser(t, "alice@example.com")
	require.NoError(t, userRepo.Create(ctx, u))

	uc := NewBeginRegistrationUseCase(userRepo, &fakeCredentialRepo{}, setupWebAuthn(t), setupChallengeStore(t), logger.NewLogger())

	// An abandoned, unverified signup does not block a fresh attempt
	result, err := uc.Execute(ctx, BeginRegistrationCommand{Mode: "signup", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)
}

func TestBeginRegistration_AddPasskey(t *testing.T) {
	userRepo := &fakeUserRepo{}
	challengeStore := setupChallengeStore(t)
	ctx := context.Background()

	u := newTestUser(t, "alice@example.com")
	require.NoError(t, userRepo.Create(ctx, u))

	uc := NewBeginRegistrationUseCase(userRepo, &fakeCredentialRepo{}, setupWebAuthn(t), challengeStore, logger.NewLogger())

	result, err := uc.Execute(ctx, BeginRegistrationCommand{
		Mode:        "add-passkey",
		PasskeyName: "YubiKey",
		Caller:      u,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)

	data, err := challengeStore.ClaimRegistration(ctx, result.SessionID)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, cache.RegistrationModeAddPasskey, data.Mode)
	assert.Equal(t, u.ID(), data.UserID)
	assert.Equal(t, "YubiKey", data.PasskeyName)
}

func TestBeginRegistration_AddPasskeyRequiresCaller(t *testing.T) {
	uc := NewBeginRegistrationUseCase(&fakeUserRepo{}, &fakeCredentialRepo{}, setupWebAuthn(t), setupChallengeStore(t), logger.NewLogger())

	_, err := uc.Execute(context.Background(), BeginRegistrationCommand{Mode: "add-passkey"})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, appErr.Type)
}

func TestBeginRegistration_InvalidMode(t *testing.T) {
	uc := NewBeginRegistrationUseCase(&fakeUserRepo{}, &fakeCredentialRepo{}, setupWebAuthn(t), setupChallengeStore(t), logger.NewLogger())

	_, err := uc.Execute(context.Background(), BeginRegistrationCommand{Mode: "upgrade"})
	require.Error(t, err)
	authErr := apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeInvalidMode, authErr.Type)
}
