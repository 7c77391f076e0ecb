package routes

import (
	"github.com/gin-gonic/gin"

	"mcprouter/internal/infrastructure/ratelimit"
	"mcprouter/internal/interfaces/http/handlers"
	"mcprouter/internal/interfaces/http/middleware"
	"mcprouter/internal/shared/logger"
)

// AuthRouteConfig holds dependencies for the passkey and key-exchange routes.
type AuthRouteConfig struct {
	WebAuthnHandler   *handlers.WebAuthnHandler
	MCPSessionHandler *handlers.MCPSessionHandler
	UserHandler       *handlers.UserHandler
	AuthMiddleware    *middleware.AuthMiddleware
	RateLimiter       ratelimit.RateLimiter
	Logger            logger.Interface
}

// SetupAuthRoutes configures the authentication routes.
func SetupAuthRoutes(engine *gin.Engine, cfg *AuthRouteConfig) {
	// Ceremony begins are the cheap-to-call endpoints worth limiting;
	// completes are already bounded by the challenge TTL
	beginLimit := ratelimit.RateLimitConfig{
		RequestsPerMinute: 10,
		RequestsPerHour:   100,
	}

	webauthn := engine.Group("/api/webauthn")
	{
		registration := webauthn.Group("/registration")
		registration.Use(cfg.AuthMiddleware.OptionalAuth())
		{
			registration.POST("/begin",
				middleware.RateLimit(cfg.RateLimiter, beginLimit, "webauthn_register", cfg.Logger),
				cfg.WebAuthnHandler.BeginRegistration)
			registration.POST("/complete", cfg.WebAuthnHandler.CompleteRegistration)
		}

		authentication := webauthn.Group("/authentication")
		{
			authentication.POST("/begin",
				middleware.RateLimit(cfg.RateLimiter, beginLimit, "webauthn_login", cfg.Logger),
				cfg.WebAuthnHandler.BeginAuthentication)
			authentication.POST("/complete", cfg.WebAuthnHandler.CompleteAuthentication)
		}
	}

	auth := engine.Group("/api/auth")
	{
		auth.POST("/mcp/session", cfg.MCPSessionHandler.Resolve)
		auth.POST("/refresh", cfg.WebAuthnHandler.RefreshSession)
		auth.POST("/verify-email", cfg.UserHandler.VerifyEmail)
		auth.POST("/resend-verification",
			middleware.RateLimit(cfg.RateLimiter, beginLimit, "resend_verification", cfg.Logger),
			cfg.UserHandler.ResendVerification)
	}
}
