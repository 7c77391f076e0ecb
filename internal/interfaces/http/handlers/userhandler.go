package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userusecases "mcprouter/internal/application/user/usecases"
	"mcprouter/internal/interfaces/http/middleware"
	"mcprouter/internal/shared/logger"
	"mcprouter/internal/shared/utils"
)

// UserHandler handles profile, passkey management, and email
// verification endpoints
type UserHandler struct {
	listPasskeys     *userusecases.ListPasskeysUseCase
	deletePasskey    *userusecases.DeletePasskeyUseCase
	sendVerification *userusecases.SendVerificationEmailUseCase
	verifyEmail      *userusecases.VerifyEmailUseCase
	logger           logger.Interface
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	listPasskeys *userusecases.ListPasskeysUseCase,
	deletePasskey *userusecases.DeletePasskeyUseCase,
	sendVerification *userusecases.SendVerificationEmailUseCase,
	verifyEmail *userusecases.VerifyEmailUseCase,
	logger logger.Interface,
) *UserHandler {
	return &UserHandler{
		listPasskeys:     listPasskeys,
		deletePasskey:    deletePasskey,
		sendVerification: sendVerification,
		verifyEmail:      verifyEmail,
		logger:           logger,
	}
}

// GetProfile handles GET /api/users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"id":            caller.SID(),
		"name":          caller.Name(),
		"email":         caller.Email(),
		"role":          string(caller.Role()),
		"emailVerified": caller.IsEmailVerified(),
		"createdAt":     caller.CreatedAt(),
	})
}

// ListPasskeys handles GET /api/users/me/passkeys
func (h *UserHandler) ListPasskeys(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.listPasskeys.Execute(c.Request.Context(), userusecases.ListPasskeysCommand{
		UserID: caller.ID(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"passkeys": result.Passkeys})
}

// DeletePasskey handles DELETE /api/users/me/passkeys/:id
func (h *UserHandler) DeletePasskey(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.deletePasskey.Execute(c.Request.Context(), userusecases.DeletePasskeyCommand{
		SID:    c.Param("id"),
		UserID: caller.ID(),
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required"`
}

// VerifyEmail handles POST /api/auth/verify-email
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.verifyEmail.Execute(c.Request.Context(), userusecases.VerifyEmailCommand{
		Email: req.Email,
		Token: req.Token,
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "email verified", nil)
}

type resendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendVerification handles POST /api/auth/resend-verification
func (h *UserHandler) ResendVerification(c *gin.Context) {
	var req resendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sendVerification.Execute(c.Request.Context(), userusecases.SendVerificationEmailCommand{
		Email: req.Email,
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	// Same response whether or not the address has an account
	utils.SuccessResponse(c, http.StatusOK, "verification email sent if the address is registered", nil)
}
