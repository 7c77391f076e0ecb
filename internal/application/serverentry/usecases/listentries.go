package usecases

import (
	"context"
	"fmt"
	"time"

	"mcprouter/internal/domain/serverentry"
	"mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
	"mcprouter/internal/shared/utils"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListEntriesCommand represents the command to list directory entries
type ListEntriesCommand struct {
	Cursor string
	Limit  int
}

// ListEntriesResult is one page of entries, newest first
type ListEntriesResult struct {
	Entries    []*serverentry.Entry
	HasMore    bool
	NextCursor string
}

// ListEntriesUseCase lists directory entries with cursor pagination
type ListEntriesUseCase struct {
	entryRepo serverentry.Repository
	logger    logger.Interface
}

// NewListEntriesUseCase creates a new ListEntriesUseCase
func NewListEntriesUseCase(entryRepo serverentry.Repository, logger logger.Interface) *ListEntriesUseCase {
	return &ListEntriesUseCase{
		entryRepo: entryRepo,
		logger:    logger,
	}
}

// Execute lists one page of entries
func (uc *ListEntriesUseCase) Execute(ctx context.Context, cmd ListEntriesCommand) (*ListEntriesResult, error) {
	limit := cmd.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	var before *time.Time
	if cmd.Cursor != "" {
		t, err := utils.DecodeCursor(cmd.Cursor)
		if err != nil {
			return nil, errors.NewValidationError("invalid cursor")
		}
		before = &t
	}

	entries, err := uc.entryRepo.List(ctx, before, limit+1)
	if err != nil {
		uc.logger.Errorw("failed to list server entries", "error", err)
		return nil, fmt.Errorf("failed to list server entries: %w", err)
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	var nextCursor string
	if hasMore && len(entries) > 0 {
		nextCursor = utils.EncodeCursor(entries[len(entries)-1].CreatedAt())
	}

	return &ListEntriesResult{
		Entries:    entries,
		HasMore:    hasMore,
		NextCursor: nextCursor,
	}, nil
}
