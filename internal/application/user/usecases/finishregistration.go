package usecases

import (
	"context"
	"fmt"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	"mcprouter/internal/application/user/helpers"
	"mcprouter/internal/domain/user"
	"mcprouter/internal/infrastructure/auth"
	"mcprouter/internal/infrastructure/cache"
	"mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/id"
	"mcprouter/internal/shared/logger"
)

const defaultPasskeyName = "Passkey"

// FinishRegistrationCommand represents the command to complete a
// registration ceremony. Caller must be set for add-passkey mode.
type FinishRegistrationCommand struct {
	SessionID string
	Response  *protocol.ParsedCredentialCreationData
	Caller    *user.User
}

// FinishRegistrationResult represents the result of completing registration
type FinishRegistrationResult struct {
	User                  *user.User
	Credential            *user.PasskeyCredential
	VerificationEmailSent bool
}

// FinishRegistrationUseCase verifies the attestation and persists the
// new credential; for signup it also creates the user row and kicks off
// email verification
type FinishRegistrationUseCase struct {
	userRepo         user.Repository
	credentialRepo   user.PasskeyCredentialRepository
	webAuthnService  *auth.WebAuthnService
	challengeStore   *cache.ChallengeStore
	sendVerification *SendVerificationEmailUseCase
	logger           logger.Interface
}

// NewFinishRegistrationUseCase creates a new FinishRegistrationUseCase
func NewFinishRegistrationUseCase(
	userRepo user.Repository,
	credentialRepo user.PasskeyCredentialRepository,
	webAuthnService *auth.WebAuthnService,
	challengeStore *cache.ChallengeStore,
	sendVerification *SendVerificationEmailUseCase,
	logger logger.Interface,
) *FinishRegistrationUseCase {
	return &FinishRegistrationUseCase{
		userRepo:         userRepo,
		credentialRepo:   credentialRepo,
		webAuthnService:  webAuthnService,
		challengeStore:   challengeStore,
		sendVerification: sendVerification,
		logger:           logger,
	}
}

// Execute completes the registration ceremony
func (uc *FinishRegistrationUseCase) Execute(ctx context.Context, cmd FinishRegistrationCommand) (*FinishRegistrationResult, error) {
	if cmd.Response == nil {
		return nil, errors.NewValidationError("credential response is required")
	}

	// The claim consumes the session: a retry or a concurrent complete
	// with the same session id sees an invalid session
	data, err := uc.challengeStore.ClaimRegistration(ctx, cmd.SessionID)
	if err != nil {
		uc.logger.Errorw("failed to claim registration challenge", "error", err)
		return nil, fmt.Errorf("failed to claim registration challenge: %w", err)
	}
	if data == nil {
		return nil, errors.NewInvalidSessionError()
	}

	switch data.Mode {
	case cache.RegistrationModeSignup:
		return uc.finishSignup(ctx, cmd, data)
	case cache.RegistrationModeAddPasskey:
		return uc.finishAddPasskey(ctx, cmd, data)
	default:
		return nil, errors.NewInvalidSessionError()
	}
}

func (uc *FinishRegistrationUseCase) finishSignup(ctx context.Context, cmd FinishRegistrationCommand, data *cache.ChallengeData) (*FinishRegistrationResult, error) {
	tempUser := helpers.NewTempWebAuthnUser(data.Session.UserID, data.PendingEmail, data.PendingName)

	credential, err := uc.webAuthnService.FinishRegistration(tempUser, *data.Session, cmd.Response)
	if err != nil {
		uc.logger.Warnw("passkey attestation verification failed", "error", err)
		return nil, errors.NewVerificationFailedError()
	}

	exists, err := uc.credentialRepo.ExistsByCredentialID(ctx, credential.ID)
	if err != nil {
		uc.logger.Errorw("failed to check credential existence", "error", err)
		return nil, fmt.Errorf("failed to check credential existence: %w", err)
	}
	if exists {
		return nil, errors.NewConflictError("credential is already registered")
	}

	u, err := uc.userRepo.GetByEmail(ctx, data.PendingEmail)
	if err != nil {
		uc.logger.Errorw("failed to get user by email", "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u != nil && u.IsEmailVerified() {
		// The email was claimed and verified between begin and complete
		return nil, errors.NewAlreadyRegisteredError()
	}
	if u == nil {
		u, err = user.NewUser(data.PendingEmail, data.PendingName, id.NewUserID)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		if err := uc.userRepo.Create(ctx, u); err != nil {
			uc.logger.Errorw("failed to persist user", "error", err)
			return nil, fmt.Errorf("failed to persist user: %w", err)
		}
	}

	passkey, err := uc.persistCredential(ctx, u.ID(), credential, data.PasskeyName)
	if err != nil {
		return nil, err
	}

	// Verification email is best-effort: the account and credential are
	// already durable, and the token can be re-requested
	emailSent := true
	if err := uc.sendVerification.ExecuteForUser(ctx, u); err != nil {
		uc.logger.Warnw("failed to send verification email after signup", "user_id", u.ID(), "error", err)
		emailSent = false
	}

	uc.logger.Infow("passkey signup completed", "user_id", u.ID())

	return &FinishRegistrationResult{
		User:                  u,
		Credential:            passkey,
		VerificationEmailSent: emailSent,
	}, nil
}

func (uc *FinishRegistrationUseCase) finishAddPasskey(ctx context.Context, cmd FinishRegistrationCommand, data *cache.ChallengeData) (*FinishRegistrationResult, error) {
	if cmd.Caller == nil {
		return nil, errors.NewUnauthorizedError("authentication required")
	}
	if data.UserID != cmd.Caller.ID() {
		// A ceremony begun by a different account cannot be completed here
		return nil, errors.NewInvalidSessionError()
	}

	credentials, err := uc.credentialRepo.GetByUserID(ctx, cmd.Caller.ID())
	if err != nil {
		uc.logger.Errorw("failed to get user credentials", "user_id", cmd.Caller.ID(), "error", err)
		return nil, fmt.Errorf("failed to get user credentials: %w", err)
	}
	webAuthnUser := helpers.NewWebAuthnUser(cmd.Caller, credentials)

	credential, err := uc.webAuthnService.FinishRegistration(webAuthnUser, *data.Session, cmd.Response)
	if err != nil {
		uc.logger.Warnw("passkey attestation verification failed", "user_id", cmd.Caller.ID(), "error", err)
		return nil, errors.NewVerificationFailedError()
	}

	exists, err := uc.credentialRepo.ExistsByCredentialID(ctx, credential.ID)
	if err != nil {
		uc.logger.Errorw("failed to check credential existence", "error", err)
		return nil, fmt.Errorf("failed to check credential existence: %w", err)
	}
	if exists {
		return nil, errors.NewConflictError("credential is already registered")
	}

	passkey, err := uc.persistCredential(ctx, cmd.Caller.ID(), credential, data.PasskeyName)
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("passkey added", "user_id", cmd.Caller.ID(), "credential_sid", passkey.SID())

	return &FinishRegistrationResult{
		User:       cmd.Caller,
		Credential: passkey,
	}, nil
}

func (uc *FinishRegistrationUseCase) persistCredential(ctx context.Context, userID uint, credential *webauthn.Credential, passkeyName string) (*user.PasskeyCredential, error) {
	if passkeyName == "" {
		passkeyName = defaultPasskeyName
	}

	passkey, err := user.NewPasskeyCredentialFromWebAuthn(userID, credential, passkeyName, id.NewPasskeyCredentialID)
	if err != nil {
		return nil, fmt.Errorf("failed to build passkey credential: %w", err)
	}

	if err := uc.credentialRepo.Create(ctx, passkey); err != nil {
		uc.logger.Errorw("failed to persist passkey credential", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to persist passkey credential: %w", err)
	}

	return passkey, nil
}
