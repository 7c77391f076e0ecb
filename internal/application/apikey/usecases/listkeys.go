package usecases

import (
	"context"
	"fmt"
	"time"

	"mcprouter/internal/domain/apikey"
	"mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
	"mcprouter/internal/shared/utils"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListKeysCommand represents the command to list a user's API keys
type ListKeysCommand struct {
	OwnerID uint
	Type    string
	Cursor  string
	Limit   int
}

// ListKeysResult is one page of keys, newest first
type ListKeysResult struct {
	Keys       []*apikey.Key
	HasMore    bool
	NextCursor string
}

// ListKeysUseCase lists the caller's API keys with cursor pagination
type ListKeysUseCase struct {
	keyRepo apikey.Repository
	logger  logger.Interface
}

// NewListKeysUseCase creates a new ListKeysUseCase
func NewListKeysUseCase(keyRepo apikey.Repository, logger logger.Interface) *ListKeysUseCase {
	return &ListKeysUseCase{
		keyRepo: keyRepo,
		logger:  logger,
	}
}

// Execute lists one page of keys
func (uc *ListKeysUseCase) Execute(ctx context.Context, cmd ListKeysCommand) (*ListKeysResult, error) {
	keyType := apikey.KeyType(cmd.Type)
	if keyType != apikey.KeyTypeUser && keyType != apikey.KeyTypeServer {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid key type %q", cmd.Type))
	}

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

	// Fetch one extra row to learn whether a further page exists
	keys, err := uc.keyRepo.ListByOwner(ctx, cmd.OwnerID, keyType, before, limit+1)
	if err != nil {
		uc.logger.Errorw("failed to list API keys", "owner_id", cmd.OwnerID, "error", err)
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}

	hasMore := len(keys) > limit
	if hasMore {
		keys = keys[:limit]
	}

	var nextCursor string
	if hasMore && len(keys) > 0 {
		nextCursor = utils.EncodeCursor(keys[len(keys)-1].CreatedAt())
	}

	return &ListKeysResult{
		Keys:       keys,
		HasMore:    hasMore,
		NextCursor: nextCursor,
	}, nil
}
