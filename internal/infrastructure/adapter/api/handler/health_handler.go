package handler

import (
	"context"
	"net/http"
	"sort"

	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/gin-gonic/gin"
)

// HealthCheck probes one backing service
type HealthCheck func(ctx context.Context) error

// HealthHandler reports the liveness of the backing services
type HealthHandler struct {
	checks map[string]HealthCheck
	logger coreport.Logger
}

// NewHealthHandler creates a health handler over the named checks
func NewHealthHandler(checks map[string]HealthCheck, logger coreport.Logger) *HealthHandler {
	if checks == nil {
		checks = map[string]HealthCheck{}
	}
	return &HealthHandler{
		checks: checks,
		logger: logger,
	}
}

// Health handles the GET /health endpoint
func (h *HealthHandler) Health(c *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	components := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](c.Request.Context()); err != nil {
			h.logger.Error("Health check failed", map[string]any{
				"component": name,
				"error":     err.Error(),
			})
			components[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "up"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status":     overall,
		"components": components,
	})
}
