package usecases

import (
	"context"
	"fmt"

	"mcprouter/internal/domain/user"
	"mcprouter/internal/infrastructure/cache"
	"mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
)

// VerifyEmailCommand represents the command to verify an email address
type VerifyEmailCommand struct {
	Email string
	Token string
}

// VerifyEmailUseCase consumes a verification token and marks the user's
// email verified
type VerifyEmailUseCase struct {
	userRepo   user.Repository
	tokenStore *cache.VerificationTokenStore
	logger     logger.Interface
}

// NewVerifyEmailUseCase creates a new VerifyEmailUseCase
func NewVerifyEmailUseCase(
	userRepo user.Repository,
	tokenStore *cache.VerificationTokenStore,
	logger logger.Interface,
) *VerifyEmailUseCase {
	return &VerifyEmailUseCase{
		userRepo:   userRepo,
		tokenStore: tokenStore,
		logger:     logger,
	}
}

// Execute verifies the email address
func (uc *VerifyEmailUseCase) Execute(ctx context.Context, cmd VerifyEmailCommand) error {
	if cmd.Email == "" || cmd.Token == "" {
		return errors.NewTokenInvalidError()
	}

	record, err := uc.tokenStore.Get(ctx, cmd.Email, cmd.Token)
	if err != nil {
		uc.logger.Errorw("failed to get verification token", "error", err)
		return fmt.Errorf("failed to get verification token: %w", err)
	}
	if record == nil {
		return errors.NewTokenInvalidError()
	}

	if uc.tokenStore.IsExpired(record) {
		// Spent either way; a fresh token must be requested
		if err := uc.tokenStore.Delete(ctx, cmd.Email, cmd.Token); err != nil {
			uc.logger.Warnw("failed to delete expired verification token", "error", err)
		}
		return errors.NewTokenExpiredError()
	}

	u, err := uc.userRepo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		uc.logger.Errorw("failed to get user by email", "error", err)
		return fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return errors.NewTokenInvalidError()
	}

	if !u.IsEmailVerified() {
		if err := u.MarkEmailVerified(); err != nil {
			return fmt.Errorf("failed to mark email verified: %w", err)
		}
		if err := uc.userRepo.Update(ctx, u); err != nil {
			uc.logger.Errorw("failed to update user after verification", "user_id", u.ID(), "error", err)
			return fmt.Errorf("failed to update user: %w", err)
		}
	}

	if err := uc.tokenStore.Delete(ctx, cmd.Email, cmd.Token); err != nil {
		uc.logger.Warnw("failed to delete verification token", "error", err)
	}

	uc.logger.Infow("email verified", "user_id", u.ID())
	return nil
}
