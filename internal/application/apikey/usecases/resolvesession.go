package usecases

import (
	"context"
	"errors"
	"fmt"

	"mcprouter/internal/domain/apikey"
	"mcprouter/internal/domain/user"
	"mcprouter/internal/shared/logger"
)

// Sentinel failures of the key exchange. The HTTP handler maps each to
// its exact response body, so the set is closed.
var (
	ErrInvalidServerKey = errors.New("invalid server key")
	ErrInvalidUserKey   = errors.New("invalid user key")
	ErrUserNotFound     = errors.New("user not found")
)

// ResolveSessionCommand carries the two raw keys of the exchange
type ResolveSessionCommand struct {
	ServerKey string
	UserKey   string
}

// ResolveSessionResult is the resolved end user
type ResolveSessionResult struct {
	User *user.User
}

// ResolveSessionUseCase authenticates a calling service by its server
// key and resolves a user key to the owning user. The two keys may
// belong to different accounts; the server key only authorizes the
// lookup.
type ResolveSessionUseCase struct {
	keyRepo  apikey.Repository
	userRepo user.Repository
	logger   logger.Interface
}

// NewResolveSessionUseCase creates a new ResolveSessionUseCase
func NewResolveSessionUseCase(keyRepo apikey.Repository, userRepo user.Repository, logger logger.Interface) *ResolveSessionUseCase {
	return &ResolveSessionUseCase{
		keyRepo:  keyRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Execute performs the exchange. Checks run strictly in order: server
// key, user key, owning user; the first failure wins.
func (uc *ResolveSessionUseCase) Execute(ctx context.Context, cmd ResolveSessionCommand) (*ResolveSessionResult, error) {
	// Server keys are stored hashed; lookup by digest with the type
	// filter in the query
	serverKey, err := uc.keyRepo.GetByTypeAndValue(ctx, apikey.KeyTypeServer, apikey.HashKey(cmd.ServerKey))
	if err != nil {
		uc.logger.Errorw("failed to look up server key", "error", err)
		return nil, fmt.Errorf("failed to look up server key: %w", err)
	}
	if serverKey == nil || !serverKey.MatchesRaw(cmd.ServerKey) {
		return nil, ErrInvalidServerKey
	}

	// User keys are stored raw; lookup by exact value, still
	// type-filtered so a server key in the body is rejected here
	userKey, err := uc.keyRepo.GetByTypeAndValue(ctx, apikey.KeyTypeUser, cmd.UserKey)
	if err != nil {
		uc.logger.Errorw("failed to look up user key", "error", err)
		return nil, fmt.Errorf("failed to look up user key: %w", err)
	}
	if userKey == nil || !userKey.MatchesRaw(cmd.UserKey) {
		return nil, ErrInvalidUserKey
	}

	owner, err := uc.userRepo.GetByID(ctx, userKey.CreatedBy())
	if err != nil {
		uc.logger.Errorw("failed to load key owner", "error", err)
		return nil, fmt.Errorf("failed to load key owner: %w", err)
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	uc.logger.Debugw("session resolved", "server_key_sid", serverKey.SID(), "user_id", owner.ID())

	return &ResolveSessionResult{User: owner}, nil
}
