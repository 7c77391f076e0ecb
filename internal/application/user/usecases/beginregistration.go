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

// BeginRegistrationCommand represents the command to start a passkey
// registration ceremony. Caller is the authenticated user for
// add-passkey mode and nil for signup.
type BeginRegistrationCommand struct {
	Mode        string
	Email       string
	Name        string
	PasskeyName string
	Caller      *user.User
}

// BeginRegistrationResult represents the result of starting registration
type BeginRegistrationResult struct {
	Options   *protocol.CredentialCreation
	SessionID string
}

// BeginRegistrationUseCase handles the start of a passkey registration
// ceremony in both signup and add-passkey modes
type BeginRegistrationUseCase struct {
	userRepo        user.Repository
	credentialRepo  user.PasskeyCredentialRepository
	webAuthnService *auth.WebAuthnService
	challengeStore  *cache.ChallengeStore
	logger          logger.Interface
}

// NewBeginRegistrationUseCase creates a new BeginRegistrationUseCase
func NewBeginRegistrationUseCase(
	userRepo user.Repository,
	credentialRepo user.PasskeyCredentialRepository,
	webAuthnService *auth.WebAuthnService,
	challengeStore *cache.ChallengeStore,
	logger logger.Interface,
) *BeginRegistrationUseCase {
	return &BeginRegistrationUseCase{
		userRepo:        userRepo,
		credentialRepo:  credentialRepo,
		webAuthnService: webAuthnService,
		challengeStore:  challengeStore,
		logger:          logger,
	}
}

// Execute starts the registration ceremony
func (uc *BeginRegistrationUseCase) Execute(ctx context.Context, cmd BeginRegistrationCommand) (*BeginRegistrationResult, error) {
	switch cache.RegistrationMode(cmd.Mode) {
	case cache.RegistrationModeSignup:
		return uc.beginSignup(ctx, cmd)
	case cache.RegistrationModeAddPasskey:
		return uc.beginAddPasskey(ctx, cmd)
	default:
		return nil, errors.NewInvalidModeError(cmd.Mode)
	}
}

func (uc *BeginRegistrationUseCase) beginSignup(ctx context.Context, cmd BeginRegistrationCommand) (*BeginRegistrationResult, error) {
	if cmd.Email == "" {
		return nil, errors.NewEmailRequiredError()
	}

	existing, err := uc.userRepo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		uc.logger.Errorw("failed to check email existence", "error", err)
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	// An unverified row may retry signup; completing the ceremony
	// reattaches to it.
	if existing != nil && existing.IsEmailVerified() {
		uc.logger.Infow("signup attempt with registered email")
		return nil, errors.NewAlreadyRegisteredError()
	}

	tempUserID, err := helpers.GenerateTempUserID()
	if err != nil {
		uc.logger.Errorw("failed to generate temp user ID", "error", err)
		return nil, fmt.Errorf("failed to generate temp user ID: %w", err)
	}

	name := cmd.Name
	if name == "" {
		name = cmd.Email
	}
	tempUser := helpers.NewTempWebAuthnUser(tempUserID, cmd.Email, name)

	options, sessionData, err := uc.webAuthnService.BeginRegistration(
		tempUser,
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			UserVerification: protocol.VerificationPreferred,
			ResidentKey:      protocol.ResidentKeyRequirementPreferred,
		}),
	)
	if err != nil {
		uc.logger.Errorw("failed to begin passkey registration", "error", err)
		return nil, fmt.Errorf("failed to begin passkey registration: %w", err)
	}

	sessionID, err := cache.GenerateSessionID()
	if err != nil {
		uc.logger.Errorw("failed to generate session ID", "error", err)
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	challengeData := &cache.ChallengeData{
		Session:      sessionData,
		Mode:         cache.RegistrationModeSignup,
		PendingEmail: cmd.Email,
		PendingName:  name,
		PasskeyName:  cmd.PasskeyName,
	}
	if err := uc.challengeStore.StoreRegistration(ctx, sessionID, challengeData); err != nil {
		uc.logger.Errorw("failed to store registration challenge", "error", err)
		return nil, fmt.Errorf("failed to store registration challenge: %w", err)
	}

	uc.logger.Infow("passkey signup started")

	return &BeginRegistrationResult{
		Options:   options,
		SessionID: sessionID,
	}, nil
}

func (uc *BeginRegistrationUseCase) beginAddPasskey(ctx context.Context, cmd BeginRegistrationCommand) (*BeginRegistrationResult, error) {
	if cmd.Caller == nil {
		return nil, errors.NewUnauthorizedError("authentication required")
	}

	credentials, err := uc.credentialRepo.GetByUserID(ctx, cmd.Caller.ID())
	if err != nil {
		uc.logger.Errorw("failed to get user credentials", "user_id", cmd.Caller.ID(), "error", err)
		return nil, fmt.Errorf("failed to get user credentials: %w", err)
	}

	webAuthnUser := helpers.NewWebAuthnUser(cmd.Caller, credentials)

	// Exclude already-registered credentials so the authenticator
	// refuses to re-register itself
	exclusions := make([]protocol.CredentialDescriptor, len(credentials))
	for i, c := range credentials {
		exclusions[i] = protocol.CredentialDescriptor{
			Type:         protocol.PublicKeyCredentialType,
			CredentialID: c.CredentialID(),
		}
	}

	options, sessionData, err := uc.webAuthnService.BeginRegistration(
		webAuthnUser,
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			UserVerification: protocol.VerificationPreferred,
			ResidentKey:      protocol.ResidentKeyRequirementPreferred,
		}),
		webauthn.WithExclusions(exclusions),
	)
	if err != nil {
		uc.logger.Errorw("failed to begin passkey registration", "user_id", cmd.Caller.ID(), "error", err)
		return nil, fmt.Errorf("failed to begin passkey registration: %w", err)
	}

	sessionID, err := cache.GenerateSessionID()
	if err != nil {
		uc.logger.Errorw("failed to generate session ID", "error", err)
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	challengeData := &cache.ChallengeData{
		Session:     sessionData,
		Mode:        cache.RegistrationModeAddPasskey,
		UserID:      cmd.Caller.ID(),
		PasskeyName: cmd.PasskeyName,
	}
	if err := uc.challengeStore.StoreRegistration(ctx, sessionID, challengeData); err != nil {
		uc.logger.Errorw("failed to store registration challenge", "error", err)
		return nil, fmt.Errorf("failed to store registration challenge: %w", err)
	}

	uc.logger.Infow("add-passkey registration started", "user_id", cmd.Caller.ID())

	return &BeginRegistrationResult{
		Options:   options,
		SessionID: sessionID,
	}, nil
}
