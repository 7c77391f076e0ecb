package usecases

import (
	"context"
	"fmt"
	"math"
	"time"

	"mcprouter/internal/domain/user"
	"mcprouter/internal/infrastructure/cache"
	"mcprouter/internal/infrastructure/email"
	"mcprouter/internal/shared/biztime"
	"mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
)

// SendVerificationEmailCommand represents the command to (re)send a
// verification email
type SendVerificationEmailCommand struct {
	Email string
}

// SendVerificationEmailUseCase issues a verification token and emails
// it, behind the per-user resend cooldown
type SendVerificationEmailUseCase struct {
	userRepo     user.Repository
	tokenStore   *cache.VerificationTokenStore
	emailService email.Service
	tokenExpiry  time.Duration
	cooldown     time.Duration
	logger       logger.Interface
}

// NewSendVerificationEmailUseCase creates a new SendVerificationEmailUseCase
func NewSendVerificationEmailUseCase(
	userRepo user.Repository,
	tokenStore *cache.VerificationTokenStore,
	emailService email.Service,
	tokenExpiry time.Duration,
	cooldown time.Duration,
	logger logger.Interface,
) *SendVerificationEmailUseCase {
	return &SendVerificationEmailUseCase{
		userRepo:     userRepo,
		tokenStore:   tokenStore,
		emailService: emailService,
		tokenExpiry:  tokenExpiry,
		cooldown:     cooldown,
		logger:       logger,
	}
}

// Execute resolves the user and sends a verification email
func (uc *SendVerificationEmailUseCase) Execute(ctx context.Context, cmd SendVerificationEmailCommand) error {
	if cmd.Email == "" {
		return errors.NewValidationError("email is required")
	}

	u, err := uc.userRepo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		uc.logger.Errorw("failed to get user by email", "error", err)
		return fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		// Do not reveal whether the address has an account
		uc.logger.Infow("verification email requested for unknown address")
		return nil
	}

	return uc.ExecuteForUser(ctx, u)
}

// ExecuteForUser sends a verification email for an already-loaded user.
// Called directly from the signup completion path.
func (uc *SendVerificationEmailUseCase) ExecuteForUser(ctx context.Context, u *user.User) error {
	if u.IsEmailVerified() {
		return errors.NewConflictError("email is already verified")
	}

	now := biztime.NowUTC()
	if wait := u.VerificationEmailWait(now, uc.cooldown); wait > 0 {
		return errors.NewResendCooldownError(int(math.Ceil(wait.Seconds())))
	}

	token, err := cache.GenerateVerificationToken()
	if err != nil {
		uc.logger.Errorw("failed to generate verification token", "error", err)
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	// Replaces any previous token: at most one is live per email
	if err := uc.tokenStore.Create(ctx, u.Email(), token, now.Add(uc.tokenExpiry)); err != nil {
		uc.logger.Errorw("failed to store verification token", "error", err)
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	if err := uc.emailService.SendVerificationEmail(u.Email(), token); err != nil {
		uc.logger.Errorw("failed to send verification email", "user_id", u.ID(), "error", err)
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	// Cooldown starts only after the send succeeded
	u.MarkVerificationEmailSent(now)
	if err := uc.userRepo.Update(ctx, u); err != nil {
		uc.logger.Errorw("failed to update user after verification email", "user_id", u.ID(), "error", err)
		return fmt.Errorf("failed to update user: %w", err)
	}

	uc.logger.Infow("verification email sent", "user_id", u.ID())
	return nil
}
