package handlers

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apikeyusecases "mcprouter/internal/application/apikey/usecases"
	"mcprouter/internal/shared/logger"
)

// MCPSessionHandler handles the key-exchange endpoint used by MCP
// servers to resolve an end user from a pair of API keys. Its response
// bodies are a wire contract with existing callers and bypass the
// standard envelope.
type MCPSessionHandler struct {
	resolveSession *apikeyusecases.ResolveSessionUseCase
	logger         logger.Interface
}

// NewMCPSessionHandler creates a new MCP session handler
func NewMCPSessionHandler(resolveSession *apikeyusecases.ResolveSessionUseCase, logger logger.Interface) *MCPSessionHandler {
	return &MCPSessionHandler{
		resolveSession: resolveSession,
		logger:         logger,
	}
}

type resolveSessionRequest struct {
	UserKey string `json:"userKey" binding:"required"`
}

// Resolve handles POST /api/auth/mcp/session. Checks run in a fixed
// order and the first failure determines the response.
func (h *MCPSessionHandler) Resolve(c *gin.Context) {
	serverKey := c.GetHeader("x-api-key")
	if serverKey == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Server key is required in x-api-key header"})
		return
	}

	var req resolveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": bindingErrorDetails(err),
		})
		return
	}

	result, err := h.resolveSession.Execute(c.Request.Context(), apikeyusecases.ResolveSessionCommand{
		ServerKey: serverKey,
		UserKey:   req.UserKey,
	})
	if err != nil {
		switch {
		case stderrors.Is(err, apikeyusecases.ErrInvalidServerKey):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid server key"})
		case stderrors.Is(err, apikeyusecases.ErrInvalidUserKey):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user key"})
		case stderrors.Is(err, apikeyusecases.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		default:
			h.logger.Errorw("session resolution failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	u := result.User

	// emailVerified is null until verified, then the RFC3339 timestamp
	var emailVerified *string
	if t := u.EmailVerifiedAt(); t != nil {
		s := t.UTC().Format(time.RFC3339)
		emailVerified = &s
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":            u.SID(),
			"name":          u.Name(),
			"email":         u.Email(),
			"role":          string(u.Role()),
			"emailVerified": emailVerified,
		},
	})
}

func bindingErrorDetails(err error) []string {
	var validationErrs validator.ValidationErrors
	if stderrors.As(err, &validationErrs) {
		details := make([]string, len(validationErrs))
		for i, fe := range validationErrs {
			details[i] = fmt.Sprintf("%s is %s", fe.Field(), fe.Tag())
		}
		return details
	}
	return []string{err.Error()}
}
