package routes

import (
	"github.com/gin-gonic/gin"

	"mcprouter/internal/interfaces/http/handlers"
	"mcprouter/internal/interfaces/http/middleware"
)

// ServerRouteConfig holds dependencies for the directory routes.
type ServerRouteConfig struct {
	ServerEntryHandler *handlers.ServerEntryHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

// SetupServerRoutes configures the MCP server directory routes.
func SetupServerRoutes(engine *gin.Engine, cfg *ServerRouteConfig) {
	servers := engine.Group("/api/servers")
	{
		servers.GET("", cfg.ServerEntryHandler.List)

		servers.POST("", cfg.AuthMiddleware.RequireAuth(), cfg.ServerEntryHandler.Create)
		servers.DELETE("/:id", cfg.AuthMiddleware.RequireAuth(), cfg.ServerEntryHandler.Delete)
	}
}
