package handlers

import (
	"github.com/gauss-analytics/gauss-assistant/assistant"
	"github.com/gauss-analytics/gauss-assistant/cache"
	"github.com/gauss-analytics/gauss-assistant/db"
	"github.com/gauss-analytics/gauss-assistant/service"
)

// @title           Gauss Analytics Assistant API
// @version         1.0
// @description     Conversational analytics assistant over the mental health admissions dataset - chat in natural language, get answers as text, tables or charts.

// @contact.name   Gauss Analytics
// @contact.url    https://github.com/gauss-analytics/gauss-assistant

// @host      localhost:9090
// @BasePath  /

// @schemes   http https

type Handlers struct {
	db           *db.DB
	orchestrator *assistant.Orchestrator
	backend      *service.BackendClient
	cache        *cache.Cache
}

func New(db *db.DB, orchestrator *assistant.Orchestrator, backend *service.BackendClient, cache *cache.Cache) *Handlers {
	return &Handlers{
		db:           db,
		orchestrator: orchestrator,
		backend:      backend,
		cache:        cache,
	}
}

// userID resolves the caller identity from the X-User-ID header. The
// demo dashboard has no real auth tokens; "admin" is the default.
func userID(header string) string {
	if header == "" {
		return "admin"
	}
	return header
}
