// Package handlers implements the HTTP API over the retrieval client.
package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	quyche "github.com/lacviet-ai/quyche"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	client quyche.Lifecycle
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(client quyche.Lifecycle) *HealthHandler {
	return &HealthHandler{client: client}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "quyche",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready. The service is ready once the
// corpus has been loaded.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	status := h.client.Status()

	response := gin.H{
		"status":    "ready",
		"service":   "quyche",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"corpus":    status,
	}

	if !status.Initialized {
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
