package usecases

import (
	"context"
	"fmt"

	"mcprouter/internal/domain/apikey"
	"mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/id"
	"mcprouter/internal/shared/logger"
)

// CreateKeyCommand represents the command to create an API key
type CreateKeyCommand struct {
	Name    string
	Type    string
	OwnerID uint
}

// CreateKeyResult carries the created record and the raw secret. The
// raw secret appears here and nowhere else.
type CreateKeyResult struct {
	Key    *apikey.Key
	RawKey string
}

// CreateKeyUseCase creates a new API key for the caller
type CreateKeyUseCase struct {
	keyRepo apikey.Repository
	logger  logger.Interface
}

// NewCreateKeyUseCase creates a new CreateKeyUseCase
func NewCreateKeyUseCase(keyRepo apikey.Repository, logger logger.Interface) *CreateKeyUseCase {
	return &CreateKeyUseCase{
		keyRepo: keyRepo,
		logger:  logger,
	}
}

// Execute creates the key
func (uc *CreateKeyUseCase) Execute(ctx context.Context, cmd CreateKeyCommand) (*CreateKeyResult, error) {
	if cmd.Name == "" {
		return nil, errors.NewValidationError("key name is required")
	}

	keyType := apikey.KeyType(cmd.Type)
	if keyType != apikey.KeyTypeUser && keyType != apikey.KeyTypeServer {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid key type %q", cmd.Type))
	}

	key, raw, err := apikey.NewKey(cmd.Name, keyType, cmd.OwnerID, id.NewKeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to create key: %w", err)
	}

	if err := uc.keyRepo.Create(ctx, key); err != nil {
		uc.logger.Errorw("failed to persist API key", "error", err)
		return nil, fmt.Errorf("failed to persist API key: %w", err)
	}

	uc.logger.Infow("API key created", "sid", key.SID(), "type", key.Type(), "owner_id", cmd.OwnerID)

	return &CreateKeyResult{
		Key:    key,
		RawKey: raw,
	}, nil
}
