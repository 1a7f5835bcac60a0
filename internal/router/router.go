// Package router wires the HTTP routes to their handlers.
package router

import (
	"net/http"

	"chat-relay/internal/handler"
	"chat-relay/internal/middleware"
	"chat-relay/internal/relay"
	"chat-relay/internal/types"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with the full middleware stack and routes.
func NewRouter(
	serverHandler *handler.Server,
	relayServer *relay.Server,
	configManager types.ConfigManager,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(configManager.GetCORSConfig()))

	registerSystemRoutes(router, serverHandler)
	registerRelayRoutes(router, relayServer)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	return router
}

// registerSystemRoutes registers liveness, health, stats and log routes.
func registerSystemRoutes(router *gin.Engine, serverHandler *handler.Server) {
	router.GET("/", serverHandler.Root)
	router.GET("/health", serverHandler.Health)
	router.GET("/stats", serverHandler.Stats)
	router.GET("/logs", serverHandler.Logs)
}

// registerRelayRoutes registers the chat completion relay routes.
// Both the versioned and bare paths are accepted as aliases.
func registerRelayRoutes(router *gin.Engine, relayServer *relay.Server) {
	router.POST("/v1/chat/completions", relayServer.HandleChatCompletions)
	router.POST("/chat/completions", relayServer.HandleChatCompletions)
}
