package usecases

import (
	"context"
	"testing"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcprouter/internal/infrastructure/cache"
	apperrors "mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
)

func newFinishRegistrationUseCase(t *testing.T, challengeStore *cache.ChallengeStore) *FinishRegistrationUseCase {
	t.Helper()
	userRepo := &fakeUserRepo{}
	credentialRepo := &fakeCredentialRepo{}
	sendVerification := NewSendVerificationEmailUseCase(userRepo, setupTokenStore(t), &fakeEmailService{}, 0, 0, logger.NewLogger())
	return NewFinishRegistrationUseCase(userRepo, credentialRepo, setupWebAuthn(t), challengeStore, sendVerification, logger.NewLogger())
}

func TestFinishRegistration_RequiresResponse(t *testing.T) {
	uc := newFinishRegistrationUseCase(t, setupChallengeStore(t))

	_, err := uc.Execute(context.Background(), FinishRegistrationCommand{SessionID: "some-session"})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestFinishRegistration_UnknownSession(t *testing.T) {
	uc := newFinishRegistrationUseCase(t, setupChallengeStore(t))

	_, err := uc.Execute(context.Background(), FinishRegistrationCommand{
		SessionID: "never-stored",
		Response:  &protocol.ParsedCredentialCreationData{},
	})
	require.Error(t, err)
	authErr := apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeInvalidSession, authErr.Type)
}

func TestFinishRegistration_SessionIsConsumedOnFirstAttempt(t *testing.T) {
	userRepo := &fakeUserRepo{}
	credentialRepo := &fakeCredentialRepo{}
	challengeStore := setupChallengeStore(t)
	webAuthnSvc := setupWebAuthn(t)
	ctx := context.Background()

	beginUC := NewBeginRegistrationUseCase(userRepo, credentialRepo, webAuthnSvc, challengeStore, logger.NewLogger())
	begun, err := beginUC.Execute(ctx, BeginRegistrationCommand{Mode: "signup", Email: "alice@example.com"})
	require.NoError(t, err)

	sendVerification := NewSendVerificationEmailUseCase(userRepo, setupTokenStore(t), &fakeEmailService{}, 0, 0, logger.NewLogger())
	finishUC := NewFinishRegistrationUseCase(userRepo, credentialRepo, webAuthnSvc, challengeStore, sendVerification, logger.NewLogger())

	// A response that fails attestation still consumes the parked session
	badResponse := &protocol.ParsedCredentialCreationData{}
	_, err = finishUC.Execute(ctx, FinishRegistrationCommand{SessionID: begun.SessionID, Response: badResponse})
	require.Error(t, err)
	authErr := apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeVerificationFailed, authErr.Type)

	// Retrying with the same session id now reads as invalid session
	_, err = finishUC.Execute(ctx, FinishRegistrationCommand{SessionID: begun.SessionID, Response: badResponse})
	require.Error(t, err)
	authErr = apperrors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, apperrors.ErrorTypeInvalidSession, authErr.Type)
}
