package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cinegraph/cinegraph"
	"github.com/cinegraph/cinegraph/pkg/server/dto"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	graph cinegraph.Cinegraph
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(g cinegraph.Cinegraph) *HealthHandler {
	return &HealthHandler{graph: g}
}

// HealthCheck handles GET /health - liveness plus storage reachability.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response := gin.H{
		"status":    "healthy",
		"service":   "cinegraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	}

	if err := h.graph.Ping(c.Request.Context()); err != nil {
		response["status"] = "degraded"
		response["storage"] = gin.H{"status": "unreachable", "error": err.Error()}
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	response["storage"] = gin.H{"status": "reachable"}

	if stats, err := h.graph.Stats(c.Request.Context()); err == nil {
		response["stats"] = dto.NewStatsResponse(stats)
	}

	c.JSON(http.StatusOK, response)
}

// LivenessCheck handles GET /live - always healthy while the process runs.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "cinegraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// VersionInfo handles GET /version.
func (h *HealthHandler) VersionInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    Version,
		"git_commit": GitCommit,
		"build_time": BuildTime,
		"go_version": GoVersion,
	})
}
