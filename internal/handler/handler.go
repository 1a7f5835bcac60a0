// Package handler provides the system HTTP endpoints.
package handler

import (
	"runtime"
	"strconv"
	"time"

	app_errors "chat-relay/internal/errors"
	"chat-relay/internal/response"
	"chat-relay/internal/services"
	"chat-relay/internal/stats"
	"chat-relay/internal/types"

	"github.com/gin-gonic/gin"
)

// Server handles the non-relay endpoints: liveness, health, stats and logs.
type Server struct {
	configManager     types.ConfigManager
	collector         *stats.Collector
	requestLogService *services.RequestLogService
}

// NewServer creates a new handler server.
func NewServer(
	configManager types.ConfigManager,
	collector *stats.Collector,
	requestLogService *services.RequestLogService,
) *Server {
	return &Server{
		configManager:     configManager,
		collector:         collector,
		requestLogService: requestLogService,
	}
}

// Root reports liveness and configuration sanity.
func (h *Server) Root(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":             "ok",
		"timestamp":          time.Now().Format(time.RFC3339),
		"api_key_configured": h.configManager.IsAPIKeyConfigured(),
	})
}

// Health reports process health, uptime and memory usage.
func (h *Server) Health(c *gin.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	c.JSON(200, gin.H{
		"status": "healthy",
		"uptime": time.Since(h.collector.StartTime()).Round(time.Second).String(),
		"memory": gin.H{
			"alloc_bytes":       memStats.Alloc,
			"total_alloc_bytes": memStats.TotalAlloc,
			"sys_bytes":         memStats.Sys,
			"num_gc":            memStats.NumGC,
		},
	})
}

// Stats returns the process-wide counters.
func (h *Server) Stats(c *gin.Context) {
	c.JSON(200, h.collector.Snapshot())
}

// Logs returns recent persisted request outcomes, newest first.
func (h *Server) Logs(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	logs, err := h.requestLogService.List(limit)
	if err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrDatabase, "Failed to query request logs"))
		return
	}
	response.Success(c, logs)
}
