package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gauss-analytics/gauss-assistant/ai"
	"github.com/gauss-analytics/gauss-assistant/assistant"
	"github.com/gauss-analytics/gauss-assistant/cache"
	"github.com/gauss-analytics/gauss-assistant/config"
	"github.com/gauss-analytics/gauss-assistant/db"
	_ "github.com/gauss-analytics/gauss-assistant/docs" // Swagger docs
	"github.com/gauss-analytics/gauss-assistant/handlers"
	"github.com/gauss-analytics/gauss-assistant/models"
	"github.com/gauss-analytics/gauss-assistant/service"
)

// llmAdapter narrows *ai.Client's concrete session type to the
// orchestrator's Session interface.
type llmAdapter struct {
	client *ai.Client
}

func (a llmAdapter) NewSession(systemPrompt string, history []models.ConversationTurn) assistant.Session {
	return a.client.NewSession(systemPrompt, history)
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := config.GetConfig()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close()

	appCache := cache.New()

	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, chat requests will fail")
	}
	aiClient := ai.New(cfg.GeminiAPIKey, cfg.GeminiModel)

	backend := service.NewBackendClient(cfg.BackendBaseURL)
	if _, err := backend.Health(context.Background()); err != nil {
		log.Warn().Err(err).Str("url", cfg.BackendBaseURL).Msg("data backend unreachable at startup")
	}

	orchestrator := assistant.NewOrchestrator(llmAdapter{aiClient}, backend, cfg.SystemPrompt())

	h := handlers.New(database, orchestrator, backend, appCache)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-User-ID")
	r.Use(cors.New(corsConfig))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", h.HealthHandler)
	r.POST("/api/login", h.LoginHandler)

	r.POST("/api/chat", h.ChatHandler)
	r.GET("/api/chat/sessions", h.ListSessionsHandler)
	r.POST("/api/chat/sessions", h.CreateSessionHandler)
	r.GET("/api/chat/sessions/:id", h.GetSessionHandler)
	r.POST("/api/chat/sessions/:id/reset", h.ResetSessionHandler)
	r.DELETE("/api/chat/sessions/:id", h.DeleteSessionHandler)

	r.GET("/api/statistics/:kind", h.StatisticsHandler)
	r.POST("/api/analyze", h.AnalyzeHandler)
	r.GET("/api/query/examples", h.QueryExamplesHandler)
	r.GET("/api/query/schema", h.TableSchemaHandler)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
