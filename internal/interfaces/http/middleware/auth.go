package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mcprouter/internal/domain/user"
	"mcprouter/internal/infrastructure/auth"
	"mcprouter/internal/shared/logger"
	"mcprouter/internal/shared/utils"
)

// ContextKeyCurrentUser holds the loaded *user.User for the request
const ContextKeyCurrentUser = "current_user"

type AuthMiddleware struct {
	jwtService *auth.JWTService
	userRepo   user.Repository
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, userRepo user.Repository, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// RequireAuth rejects requests without a valid access token and loads
// the caller into the context
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := m.resolveUser(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or missing authorization token")
			c.Abort()
			return
		}

		c.Set(ContextKeyCurrentUser, u)
		c.Next()
	}
}

// OptionalAuth loads the caller when a valid token is present and
// continues anonymously otherwise
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ok := m.resolveUser(c); ok {
			c.Set(ContextKeyCurrentUser, u)
		}
		c.Next()
	}
}

func (m *AuthMiddleware) resolveUser(c *gin.Context) (*user.User, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := m.jwtService.Verify(parts[1])
	if err != nil {
		m.logger.Debugw("failed to verify token", "error", err)
		return nil, false
	}
	if claims.TokenType != auth.TokenTypeAccess {
		return nil, false
	}

	u, err := m.userRepo.GetBySID(c.Request.Context(), claims.UserSID)
	if err != nil {
		m.logger.Errorw("failed to load user for token", "error", err)
		return nil, false
	}
	if u == nil {
		return nil, false
	}

	return u, true
}

// CurrentUser returns the authenticated user loaded by the middleware
func CurrentUser(c *gin.Context) (*user.User, bool) {
	v, exists := c.Get(ContextKeyCurrentUser)
	if !exists {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok
}
