package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gauss-analytics/gauss-assistant/cache"
	"github.com/gauss-analytics/gauss-assistant/models"
)

const healthCacheKey = "backend:health"

// HealthHandler reports service health including the data backend.
// @Summary      Health check
// @Description  Check the assistant service and the data backend it queries
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "Service health status"
// @Router       /health [get]
func (h *Handlers) HealthHandler(c *gin.Context) {
	status := gin.H{
		"status":  "healthy",
		"db":      "connected",
		"backend": "unreachable",
	}

	if cached, ok := h.cache.Get(healthCacheKey); ok {
		if backend, ok := cached.(*models.BackendHealth); ok {
			status["backend"] = "connected"
			if backend.TotalRegistros != nil {
				status["total_registros"] = *backend.TotalRegistros
			}
			c.JSON(http.StatusOK, status)
			return
		}
	}

	backend, err := h.backend.Health(c.Request.Context())
	if err == nil {
		h.cache.Set(healthCacheKey, backend, cache.HealthTTL)
		status["backend"] = "connected"
		if backend.TotalRegistros != nil {
			status["total_registros"] = *backend.TotalRegistros
		}
	}

	c.JSON(http.StatusOK, status)
}
