package usecases

import (
	"context"
	"fmt"

	"mcprouter/internal/domain/user"
	"mcprouter/internal/shared/logger"
)

// ListPasskeysCommand represents the command to list a user's passkeys
type ListPasskeysCommand struct {
	UserID uint
}

// ListPasskeysResult represents the result of listing passkeys
type ListPasskeysResult struct {
	Passkeys []user.PasskeyCredentialDisplayInfo
}

// ListPasskeysUseCase lists the caller's registered passkeys
type ListPasskeysUseCase struct {
	credentialRepo user.PasskeyCredentialRepository
	logger         logger.Interface
}

// NewListPasskeysUseCase creates a new ListPasskeysUseCase
func NewListPasskeysUseCase(credentialRepo user.PasskeyCredentialRepository, logger logger.Interface) *ListPasskeysUseCase {
	return &ListPasskeysUseCase{
		credentialRepo: credentialRepo,
		logger:         logger,
	}
}

// Execute lists the user's passkeys
func (uc *ListPasskeysUseCase) Execute(ctx context.Context, cmd ListPasskeysCommand) (*ListPasskeysResult, error) {
	credentials, err := uc.credentialRepo.GetByUserID(ctx, cmd.UserID)
	if err != nil {
		uc.logger.Errorw("failed to list passkeys", "user_id", cmd.UserID, "error", err)
		return nil, fmt.Errorf("failed to list passkeys: %w", err)
	}

	passkeys := make([]user.PasskeyCredentialDisplayInfo, len(credentials))
	for i, c := range credentials {
		passkeys[i] = c.GetDisplayInfo()
	}

	return &ListPasskeysResult{Passkeys: passkeys}, nil
}
