package usecases

import (
	"context"
	"fmt"

	"mcprouter/internal/domain/apikey"
	"mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
)

// DeleteKeyCommand represents the command to delete an API key
type DeleteKeyCommand struct {
	SID     string
	OwnerID uint
}

// DeleteKeyUseCase deletes one of the caller's API keys
type DeleteKeyUseCase struct {
	keyRepo apikey.Repository
	logger  logger.Interface
}

// NewDeleteKeyUseCase creates a new DeleteKeyUseCase
func NewDeleteKeyUseCase(keyRepo apikey.Repository, logger logger.Interface) *DeleteKeyUseCase {
	return &DeleteKeyUseCase{
		keyRepo: keyRepo,
		logger:  logger,
	}
}

// Execute deletes the key. A key owned by someone else reads as not
// found, same as a key that never existed.
func (uc *DeleteKeyUseCase) Execute(ctx context.Context, cmd DeleteKeyCommand) error {
	deleted, err := uc.keyRepo.DeleteBySID(ctx, cmd.SID, cmd.OwnerID)
	if err != nil {
		uc.logger.Errorw("failed to delete API key", "sid", cmd.SID, "error", err)
		return fmt.Errorf("failed to delete API key: %w", err)
	}
	if deleted == nil {
		return errors.NewNotFoundError("key not found")
	}

	uc.logger.Infow("API key deleted", "sid", cmd.SID, "owner_id", cmd.OwnerID)
	return nil
}
