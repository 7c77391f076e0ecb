package usecases

import (
	"context"
	stderrors "errors"
	"fmt"

	"mcprouter/internal/domain/user"
	"mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
)

// DeletePasskeyCommand represents the command to delete a passkey
type DeletePasskeyCommand struct {
	SID    string
	UserID uint
}

// DeletePasskeyUseCase deletes one of the caller's passkeys, refusing to
// remove the last one
type DeletePasskeyUseCase struct {
	credentialRepo user.PasskeyCredentialRepository
	logger         logger.Interface
}

// NewDeletePasskeyUseCase creates a new DeletePasskeyUseCase
func NewDeletePasskeyUseCase(credentialRepo user.PasskeyCredentialRepository, logger logger.Interface) *DeletePasskeyUseCase {
	return &DeletePasskeyUseCase{
		credentialRepo: credentialRepo,
		logger:         logger,
	}
}

// Execute deletes the passkey
func (uc *DeletePasskeyUseCase) Execute(ctx context.Context, cmd DeletePasskeyCommand) error {
	deleted, err := uc.credentialRepo.DeleteBySID(ctx, cmd.SID, cmd.UserID)
	if stderrors.Is(err, user.ErrLastCredential) {
		// Passkeys are the only credential; removing the last one would
		// lock the account out
		return errors.NewConflictError("cannot delete the last passkey")
	}
	if err != nil {
		uc.logger.Errorw("failed to delete passkey", "sid", cmd.SID, "error", err)
		return fmt.Errorf("failed to delete passkey: %w", err)
	}
	if !deleted {
		return errors.NewNotFoundError("passkey not found")
	}

	uc.logger.Infow("passkey deleted", "sid", cmd.SID, "user_id", cmd.UserID)
	return nil
}
