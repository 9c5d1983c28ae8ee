package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/gauss-analytics/gauss-assistant/cache"
	"github.com/gauss-analytics/gauss-assistant/models"
)

// statisticKinds is the allowlist of dashboard aggregates the backend
// exposes; anything else is a 404, not a proxy pass-through.
var statisticKinds = map[string]bool{
	"diagnosticos":       true,
	"edad":               true,
	"sexo":               true,
	"comunidad-autonoma": true,
	"servicio":           true,
	"duracion-estancia":  true,
	"tendencia-mensual":  true,
}

// StatisticsHandler proxies a precomputed dashboard aggregate.
// @Summary      Dashboard statistics
// @Description  Precomputed aggregates for the dashboard. Kinds: diagnosticos, edad, sexo, comunidad-autonoma, servicio, duracion-estancia, tendencia-mensual. Responses are cached briefly.
// @Tags         Statistics
// @Produce      json
// @Param        kind  path      string  true  "Statistic kind"
// @Success      200   {object}  object
// @Failure      404   {object}  map[string]string  "Unknown statistic"
// @Failure      502   {object}  map[string]string  "Backend unavailable"
// @Router       /api/statistics/{kind} [get]
func (h *Handlers) StatisticsHandler(c *gin.Context) {
	kind := c.Param("kind")
	if !statisticKinds[kind] {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown statistic"})
		return
	}

	key := cache.StatisticsKey(kind)
	if cached, ok := h.cache.Get(key); ok {
		if raw, ok := cached.(json.RawMessage); ok {
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
	}

	raw, err := h.backend.Statistics(c.Request.Context(), kind)
	if err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("failed to fetch statistics")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Backend unavailable"})
		return
	}
	h.cache.Set(key, raw, cache.StatisticsTTL)
	c.Data(http.StatusOK, "application/json", raw)
}

// AnalyzeHandler runs a structured analysis request on the backend.
// @Summary      Structured dataset analysis
// @Tags         Statistics
// @Accept       json
// @Produce      json
// @Param        request  body      models.AnalyzeRequest  true  "Analysis request"
// @Success      200      {object}  models.AnalyzeResponse
// @Failure      400      {object}  map[string]string
// @Failure      502      {object}  map[string]string
// @Router       /api/analyze [post]
func (h *Handlers) AnalyzeHandler(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	resp, err := h.backend.Analyze(c.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("analysis request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Backend unavailable"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// QueryExamplesHandler returns curated example questions and queries.
// @Summary      Example queries
// @Tags         Query
// @Produce      json
// @Success      200  {object}  object
// @Failure      502  {object}  map[string]string
// @Router       /api/query/examples [get]
func (h *Handlers) QueryExamplesHandler(c *gin.Context) {
	raw, err := h.backend.QueryExamples(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Backend unavailable"})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// TableSchemaHandler returns the dataset's table schema.
// @Summary      Table schema
// @Tags         Query
// @Produce      json
// @Success      200  {object}  object
// @Failure      502  {object}  map[string]string
// @Router       /api/query/schema [get]
func (h *Handlers) TableSchemaHandler(c *gin.Context) {
	raw, err := h.backend.TableSchema(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Backend unavailable"})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
