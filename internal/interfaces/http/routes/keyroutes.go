package routes

import (
	"github.com/gin-gonic/gin"

	"mcprouter/internal/interfaces/http/handlers"
	"mcprouter/internal/interfaces/http/middleware"
)

// KeyRouteConfig holds dependencies for the API key routes.
type KeyRouteConfig struct {
	KeyHandler     *handlers.KeyHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// SetupKeyRoutes configures the API key management routes.
func SetupKeyRoutes(engine *gin.Engine, cfg *KeyRouteConfig) {
	keys := engine.Group("/api/keys")
	keys.Use(cfg.AuthMiddleware.RequireAuth())
	{
		keys.POST("", cfg.KeyHandler.Create)
		keys.GET("", cfg.KeyHandler.List)
		keys.DELETE("/:id", cfg.KeyHandler.Delete)
	}
}
