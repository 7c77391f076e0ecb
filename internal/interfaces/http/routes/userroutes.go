package routes

import (
	"github.com/gin-gonic/gin"

	"mcprouter/internal/interfaces/http/handlers"
	"mcprouter/internal/interfaces/http/middleware"
)

// UserRouteConfig holds dependencies for the profile routes.
type UserRouteConfig struct {
	UserHandler    *handlers.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// SetupUserRoutes configures the profile and passkey management routes.
func SetupUserRoutes(engine *gin.Engine, cfg *UserRouteConfig) {
	users := engine.Group("/api/users")
	users.Use(cfg.AuthMiddleware.RequireAuth())
	{
		users.GET("/me", cfg.UserHandler.GetProfile)
		users.GET("/me/passkeys", cfg.UserHandler.ListPasskeys)
		users.DELETE("/me/passkeys/:id", cfg.UserHandler.DeletePasskey)
	}
}
