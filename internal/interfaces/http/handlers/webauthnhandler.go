package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/protocol"

	userusecases "mcprouter/internal/application/user/usecases"
	"mcprouter/internal/interfaces/http/middleware"
	"mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
	"mcprouter/internal/shared/utils"
)

// WebAuthnHandler handles passkey registration and authentication
// endpoints. Ceremony responses are bare JSON objects, not the shared
// response envelope: the WebAuthn client library consumes them as-is.
type WebAuthnHandler struct {
	beginRegistration    *userusecases.BeginRegistrationUseCase
	finishRegistration   *userusecases.FinishRegistrationUseCase
	beginAuthentication  *userusecases.BeginAuthenticationUseCase
	finishAuthentication *userusecases.FinishAuthenticationUseCase
	refreshSession       *userusecases.RefreshSessionUseCase
	logger               logger.Interface
}

// NewWebAuthnHandler creates a new WebAuthn handler
func NewWebAuthnHandler(
	beginRegistration *userusecases.BeginRegistrationUseCase,
	finishRegistration *userusecases.FinishRegistrationUseCase,
	beginAuthentication *userusecases.BeginAuthenticationUseCase,
	finishAuthentication *userusecases.FinishAuthenticationUseCase,
	refreshSession *userusecases.RefreshSessionUseCase,
	logger logger.Interface,
) *WebAuthnHandler {
	return &WebAuthnHandler{
		beginRegistration:    beginRegistration,
		finishRegistration:   finishRegistration,
		beginAuthentication:  beginAuthentication,
		finishAuthentication: finishAuthentication,
		refreshSession:       refreshSession,
		logger:               logger,
	}
}

type beginRegistrationRequest struct {
	Mode        string `json:"mode" binding:"required"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	PasskeyName string `json:"passkeyName"`
}

type completeCeremonyRequest struct {
	SessionID  string          `json:"sessionId" binding:"required"`
	Credential json.RawMessage `json:"credential" binding:"required"`
}

type beginAuthenticationRequest struct {
	Email string `json:"email"`
}

// BeginRegistration handles POST /api/webauthn/registration/begin
func (h *WebAuthnHandler) BeginRegistration(c *gin.Context) {
	var req beginRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	caller, _ := middleware.CurrentUser(c)

	result, err := h.beginRegistration.Execute(c.Request.Context(), userusecases.BeginRegistrationCommand{
		Mode:        req.Mode,
		Email:       req.Email,
		Name:        req.Name,
		PasskeyName: req.PasskeyName,
		Caller:      caller,
	})
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"options":   result.Options,
		"sessionId": result.SessionID,
	})
}

// CompleteRegistration handles POST /api/webauthn/registration/complete
func (h *WebAuthnHandler) CompleteRegistration(c *gin.Context) {
	var req completeCeremonyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(req.Credential))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid credential response")
		return
	}

	caller, _ := middleware.CurrentUser(c)

	result, err := h.finishRegistration.Execute(c.Request.Context(), userusecases.FinishRegistrationCommand{
		SessionID: req.SessionID,
		Response:  parsed,
		Caller:    caller,
	})
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verified": true,
		"message":  "registration completed",
		"user": gin.H{
			"id":            result.User.SID(),
			"name":          result.User.Name(),
			"email":         result.User.Email(),
			"emailVerified": result.User.IsEmailVerified(),
		},
		"passkey":               result.Credential.GetDisplayInfo(),
		"verificationEmailSent": result.VerificationEmailSent,
	})
}

// BeginAuthentication handles POST /api/webauthn/authentication/begin
func (h *WebAuthnHandler) BeginAuthentication(c *gin.Context) {
	var req beginAuthenticationRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.beginAuthentication.Execute(c.Request.Context(), userusecases.BeginAuthenticationCommand{
		Email: req.Email,
	})
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"options":   result.Options,
		"sessionId": result.SessionID,
	})
}

// CompleteAuthentication handles POST /api/webauthn/authentication/complete
func (h *WebAuthnHandler) CompleteAuthentication(c *gin.Context) {
	var req completeCeremonyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(req.Credential))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid credential response")
		return
	}

	result, err := h.finishAuthentication.Execute(c.Request.Context(), userusecases.FinishAuthenticationCommand{
		SessionID: req.SessionID,
		Response:  parsed,
	})
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verified":     true,
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
		"expiresIn":    result.Tokens.ExpiresIn,
		"user": gin.H{
			"id":            result.User.SID(),
			"name":          result.User.Name(),
			"email":         result.User.Email(),
			"role":          string(result.User.Role()),
			"emailVerified": result.User.IsEmailVerified(),
		},
	})
}

type refreshSessionRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshSession handles POST /api/auth/refresh
func (h *WebAuthnHandler) RefreshSession(c *gin.Context) {
	var req refreshSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.refreshSession.Execute(c.Request.Context(), userusecases.RefreshSessionCommand{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
		"expiresIn":    result.Tokens.ExpiresIn,
	})
}

func (h *WebAuthnHandler) handleAuthError(c *gin.Context, err error) {
	if errors.ShouldLogAuthError(err) {
		h.logger.Warnw("passkey ceremony failed",
			"path", c.Request.URL.Path,
			"security_event", errors.IsSecurityEvent(err),
			"error", err,
		)
	}
	utils.ErrorResponseWithError(c, err)
}
