package usecases

import (
	"context"
	"fmt"

	"mcprouter/internal/domain/user"
	"mcprouter/internal/infrastructure/auth"
	"mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
)

// RefreshSessionCommand represents the command to rotate a session's
// token pair
type RefreshSessionCommand struct {
	RefreshToken string
}

// RefreshSessionResult carries the rotated token pair
type RefreshSessionResult struct {
	Tokens *auth.TokenPair
}

// RefreshSessionUseCase exchanges a valid refresh token for a fresh
// pair. The account must still exist; a deleted user's refresh token
// stops working immediately.
type RefreshSessionUseCase struct {
	userRepo   user.Repository
	jwtService *auth.JWTService
	logger     logger.Interface
}

// NewRefreshSessionUseCase creates a new RefreshSessionUseCase
func NewRefreshSessionUseCase(userRepo user.Repository, jwtService *auth.JWTService, logger logger.Interface) *RefreshSessionUseCase {
	return &RefreshSessionUseCase{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Execute rotates the token pair
func (uc *RefreshSessionUseCase) Execute(ctx context.Context, cmd RefreshSessionCommand) (*RefreshSessionResult, error) {
	if cmd.RefreshToken == "" {
		return nil, errors.NewValidationError("refresh token is required")
	}

	claims, err := uc.jwtService.Verify(cmd.RefreshToken)
	if err != nil || claims.TokenType != auth.TokenTypeRefresh {
		return nil, errors.NewInvalidCredentialsError()
	}

	u, err := uc.userRepo.GetBySID(ctx, claims.UserSID)
	if err != nil {
		uc.logger.Errorw("failed to get user for session refresh", "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, errors.NewInvalidCredentialsError()
	}

	// Role comes from the row, not the old claims, so a role change
	// lands on the next rotation
	tokens, err := uc.jwtService.Generate(u.SID(), string(u.Role()))
	if err != nil {
		uc.logger.Errorw("failed to generate session tokens", "user_id", u.ID(), "error", err)
		return nil, fmt.Errorf("failed to generate session tokens: %w", err)
	}

	uc.logger.Infow("session refreshed", "user_id", u.ID())

	return &RefreshSessionResult{Tokens: tokens}, nil
}
