package usecases

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	"mcprouter/internal/application/user/helpers"
	"mcprouter/internal/domain/user"
	"mcprouter/internal/infrastructure/auth"
	"mcprouter/internal/infrastructure/cache"
	"mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
)

// FinishAuthenticationCommand represents the command to complete a
// passkey login ceremony
type FinishAuthenticationCommand struct {
	SessionID string
	Response  *protocol.ParsedCredentialAssertionData
}

// FinishAuthenticationResult represents the result of a successful login
type FinishAuthenticationResult struct {
	User   *user.User
	Tokens *auth.TokenPair
}

// FinishAuthenticationUseCase verifies the assertion, updates the
// credential's sign count, gates unverified emails, and issues the
// session tokens
type FinishAuthenticationUseCase struct {
	userRepo        user.Repository
	credentialRepo  user.PasskeyCredentialRepository
	webAuthnService *auth.WebAuthnService
	challengeStore  *cache.ChallengeStore
	jwtService      *auth.JWTService
	logger          logger.Interface
}

// NewFinishAuthenticationUseCase creates a new FinishAuthenticationUseCase
func NewFinishAuthenticationUseCase(
	userRepo user.Repository,
	credentialRepo user.PasskeyCredentialRepository,
	webAuthnService *auth.WebAuthnService,
	challengeStore *cache.ChallengeStore,
	jwtService *auth.JWTService,
	logger logger.Interface,
) *FinishAuthenticationUseCase {
	return &FinishAuthenticationUseCase{
		userRepo:        userRepo,
		credentialRepo:  credentialRepo,
		webAuthnService: webAuthnService,
		challengeStore:  challengeStore,
		jwtService:      jwtService,
		logger:          logger,
	}
}

// Execute completes the login ceremony
func (uc *FinishAuthenticationUseCase) Execute(ctx context.Context, cmd FinishAuthenticationCommand) (*FinishAuthenticationResult, error) {
	if cmd.Response == nil {
		return nil, errors.NewValidationError("credential response is required")
	}

	data, err := uc.challengeStore.ClaimLogin(ctx, cmd.SessionID)
	if err != nil {
		uc.logger.Errorw("failed to claim login challenge", "error", err)
		return nil, fmt.Errorf("failed to claim login challenge: %w", err)
	}
	if data == nil {
		return nil, errors.NewInvalidSessionError()
	}

	var (
		u            *user.User
		verifiedCred *webauthn.Credential
	)

	if data.UserID != 0 {
		u, verifiedCred, err = uc.finishScoped(ctx, data, cmd.Response)
	} else {
		u, verifiedCred, err = uc.finishDiscoverable(ctx, data, cmd.Response)
	}
	if err != nil {
		return nil, err
	}

	if verifiedCred.Authenticator.CloneWarning {
		uc.logger.Warnw("clone warning on passkey login", "user_id", u.ID())
		return nil, errors.NewVerificationFailedError()
	}

	stored, err := uc.credentialRepo.GetByCredentialID(ctx, verifiedCred.ID)
	if err != nil {
		uc.logger.Errorw("failed to get credential after login", "error", err)
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	if stored == nil {
		return nil, errors.NewInvalidCredentialsError()
	}

	if err := stored.UpdateSignCount(verifiedCred.Authenticator.SignCount); err != nil {
		uc.logger.Warnw("sign count regression on passkey login", "user_id", u.ID(), "error", err)
		return nil, errors.NewVerificationFailedError()
	}
	stored.UpdateLastUsed()
	if err := uc.credentialRepo.Update(ctx, stored); err != nil {
		uc.logger.Errorw("failed to update credential after login", "error", err)
		return nil, fmt.Errorf("failed to update credential: %w", err)
	}

	// The cryptographic step succeeded; the email gate is separate and
	// deliberately yields no session tokens
	if !u.IsEmailVerified() {
		return nil, errors.NewEmailNotVerifiedError()
	}

	tokens, err := uc.jwtService.Generate(u.SID(), string(u.Role()))
	if err != nil {
		uc.logger.Errorw("failed to generate session tokens", "user_id", u.ID(), "error", err)
		return nil, fmt.Errorf("failed to generate session tokens: %w", err)
	}

	uc.logger.Infow("passkey login completed", "user_id", u.ID())

	return &FinishAuthenticationResult{
		User:   u,
		Tokens: tokens,
	}, nil
}

func (uc *FinishAuthenticationUseCase) finishScoped(ctx context.Context, data *cache.ChallengeData, response *protocol.ParsedCredentialAssertionData) (*user.User, *webauthn.Credential, error) {
	u, err := uc.userRepo.GetByID(ctx, data.UserID)
	if err != nil {
		uc.logger.Errorw("failed to get user", "user_id", data.UserID, "error", err)
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, nil, errors.NewInvalidCredentialsError()
	}

	credentials, err := uc.credentialRepo.GetByUserID(ctx, u.ID())
	if err != nil {
		uc.logger.Errorw("failed to get user credentials", "user_id", u.ID(), "error", err)
		return nil, nil, fmt.Errorf("failed to get user credentials: %w", err)
	}

	webAuthnUser := helpers.NewWebAuthnUser(u, credentials)
	verifiedCred, err := uc.webAuthnService.FinishLogin(webAuthnUser, *data.Session, response)
	if err != nil {
		uc.logger.Warnw("passkey assertion verification failed", "user_id", u.ID(), "error", err)
		return nil, nil, errors.NewInvalidCredentialsError()
	}

	return u, verifiedCred, nil
}

func (uc *FinishAuthenticationUseCase) finishDiscoverable(ctx context.Context, data *cache.ChallengeData, response *protocol.ParsedCredentialAssertionData) (*user.User, *webauthn.Credential, error) {
	var resolved *user.User

	handler := func(rawID, userHandle []byte) (webauthn.User, error) {
		credential, err := uc.credentialRepo.GetByCredentialID(ctx, rawID)
		if err != nil {
			return nil, fmt.Errorf("failed to get credential: %w", err)
		}
		if credential == nil {
			return nil, fmt.Errorf("unknown credential")
		}

		u, err := uc.userRepo.GetByID(ctx, credential.UserID())
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if u == nil {
			return nil, fmt.Errorf("unknown user")
		}

		credentials, err := uc.credentialRepo.GetByUserID(ctx, u.ID())
		if err != nil {
			return nil, fmt.Errorf("failed to get user credentials: %w", err)
		}

		webAuthnUser := helpers.NewWebAuthnUser(u, credentials)
		if userHandle != nil && !bytes.Equal(webAuthnUser.WebAuthnID(), userHandle) {
			return nil, fmt.Errorf("user handle mismatch")
		}

		resolved = u
		return webAuthnUser, nil
	}

	verifiedCred, err := uc.webAuthnService.FinishDiscoverableLogin(handler, *data.Session, response)
	if err != nil {
		uc.logger.Warnw("discoverable assertion verification failed", "error", err)
		return nil, nil, errors.NewInvalidCredentialsError()
	}
	if resolved == nil {
		return nil, nil, errors.NewInvalidCredentialsError()
	}

	return resolved, verifiedCred, nil
}
