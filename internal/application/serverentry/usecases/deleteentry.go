package usecases

import (
	"context"
	"fmt"

	"mcprouter/internal/domain/serverentry"
	"mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
)

// DeleteEntryCommand represents the command to delete a directory entry
type DeleteEntryCommand struct {
	SID     string
	OwnerID uint
}

// DeleteEntryUseCase deletes one of the caller's directory entries
type DeleteEntryUseCase struct {
	entryRepo serverentry.Repository
	logger    logger.Interface
}

// NewDeleteEntryUseCase creates a new DeleteEntryUseCase
func NewDeleteEntryUseCase(entryRepo serverentry.Repository, logger logger.Interface) *DeleteEntryUseCase {
	return &DeleteEntryUseCase{
		entryRepo: entryRepo,
		logger:    logger,
	}
}

// Execute deletes the entry. An entry owned by someone else reads as
// not found.
func (uc *DeleteEntryUseCase) Execute(ctx context.Context, cmd DeleteEntryCommand) error {
	deleted, err := uc.entryRepo.DeleteBySID(ctx, cmd.SID, cmd.OwnerID)
	if err != nil {
		uc.logger.Errorw("failed to delete server entry", "sid", cmd.SID, "error", err)
		return fmt.Errorf("failed to delete server entry: %w", err)
	}
	if !deleted {
		return errors.NewNotFoundError("server entry not found")
	}

	uc.logger.Infow("server entry deleted", "sid", cmd.SID, "owner_id", cmd.OwnerID)
	return nil
}
