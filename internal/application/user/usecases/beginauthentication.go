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
	"mcprouter/internal/shared/logger"
)

// BeginAuthenticationCommand represents the command to start a passkey
// login ceremony. Email is optional: without it the ceremony is
// discoverable and the authenticator picks the account.
type BeginAuthenticationCommand struct {
	Email string
}

// BeginAuthenticationResult represents the result of starting authentication
type BeginAuthenticationResult struct {
	Options   *protocol.CredentialAssertion
	SessionID string
}

// BeginAuthenticationUseCase handles the start of a passkey login ceremony
type BeginAuthenticationUseCase struct {
	userRepo        user.Repository
	credentialRepo  user.PasskeyCredentialRepository
	webAuthnService *auth.WebAuthnService
	challengeStore  *cache.ChallengeStore
	logger          logger.Interface
}

// NewBeginAuthenticationUseCase creates a new BeginAuthenticationUseCase
func NewBeginAuthenticationUseCase(
	userRepo user.Repository,
	credentialRepo user.PasskeyCredentialRepository,
	webAuthnService *auth.WebAuthnService,
	challengeStore *cache.ChallengeStore,
	logger logger.Interface,
) *BeginAuthenticationUseCase {
	return &BeginAuthenticationUseCase{
		userRepo:        userRepo,
		credentialRepo:  credentialRepo,
		webAuthnService: webAuthnService,
		challengeStore:  challengeStore,
		logger:          logger,
	}
}

// Execute starts the login ceremony
func (uc *BeginAuthenticationUseCase) Execute(ctx context.Context, cmd BeginAuthenticationCommand) (*BeginAuthenticationResult, error) {
	var (
		options     *protocol.CredentialAssertion
		sessionData *webauthn.SessionData
		userID      uint
	)

	if cmd.Email != "" {
		u, err := uc.userRepo.GetByEmail(ctx, cmd.Email)
		if err != nil {
			uc.logger.Errorw("failed to get user by email", "error", err)
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if u == nil {
			// Generic failure so the endpoint cannot be used to probe
			// for accounts
			return nil, errors.NewInvalidCredentialsError()
		}

		credentials, err := uc.credentialRepo.GetByUserID(ctx, u.ID())
		if err != nil {
			uc.logger.Errorw("failed to get user credentials", "user_id", u.ID(), "error", err)
			return nil, fmt.Errorf("failed to get user credentials: %w", err)
		}
		if len(credentials) == 0 {
			return nil, errors.NewInvalidCredentialsError()
		}

		webAuthnUser := helpers.NewWebAuthnUser(u, credentials)
		options, sessionData, err = uc.webAuthnService.BeginLogin(
			webAuthnUser,
			webauthn.WithUserVerification(protocol.VerificationPreferred),
		)
		if err != nil {
			uc.logger.Errorw("failed to begin passkey login", "user_id", u.ID(), "error", err)
			return nil, fmt.Errorf("failed to begin passkey login: %w", err)
		}
		userID = u.ID()
	} else {
		var err error
		options, sessionData, err = uc.webAuthnService.BeginDiscoverableLogin(
			webauthn.WithUserVerification(protocol.VerificationPreferred),
		)
		if err != nil {
			uc.logger.Errorw("failed to begin discoverable login", "error", err)
			return nil, fmt.Errorf("failed to begin discoverable login: %w", err)
		}
	}

	sessionID, err := cache.GenerateSessionID()
	if err != nil {
		uc.logger.Errorw("failed to generate session ID", "error", err)
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	challengeData := &cache.ChallengeData{
		Session: sessionData,
		UserID:  userID,
	}
	if err := uc.challengeStore.StoreLogin(ctx, sessionID, challengeData); err != nil {
		uc.logger.Errorw("failed to store login challenge", "error", err)
		return nil, fmt.Errorf("failed to store login challenge: %w", err)
	}

	uc.logger.Infow("passkey login started", "discoverable", cmd.Email == "")

	return &BeginAuthenticationResult{
		Options:   options,
		SessionID: sessionID,
	}, nil
}
