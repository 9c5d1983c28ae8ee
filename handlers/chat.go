package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/gauss-analytics/gauss-assistant/assistant"
	"github.com/gauss-analytics/gauss-assistant/models"
)

// ChatHandler answers one conversational analytics message.
// @Summary      Chat with the analytics assistant
// @Description  Send a natural-language message. Data questions are answered with a table or chart built from a generated SQL query; everything else is answered as plain text. Prefix the message with "select ai" to force the data path.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      models.ChatRequest  true  "Chat request with message and optional session ID"
// @Header       200      {string}  X-User-ID           "Optional user ID, defaults to admin"
// @Success      200      {object}  models.ChatResponse
// @Failure      400      {object}  map[string]string  "Invalid request"
// @Failure      404      {object}  map[string]string  "Unknown session"
// @Failure      500      {object}  map[string]string  "Internal server error"
// @Router       /api/chat [post]
func (h *Handlers) ChatHandler(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	uid := userID(c.GetHeader("X-User-ID"))

	var session *models.ChatSession
	var err error
	if req.SessionID != "" {
		session, err = h.db.GetSession(uid, req.SessionID)
		if err == nil && session == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
	} else {
		session, err = h.db.EnsureDefaultSession(uid)
	}
	if err != nil {
		log.Error().Err(err).Str("user", uid).Msg("failed to resolve chat session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve session"})
		return
	}

	turns, err := h.db.GetTurns(session.ID)
	if err != nil {
		log.Error().Err(err).Str("session", session.ID).Msg("failed to load conversation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversation"})
		return
	}
	memory := assistant.NewConversationLog(turns...)

	log.Info().Str("user", uid).Str("session", session.ID).Str("message", req.Message).Msg("chat message received")

	result := h.orchestrator.Respond(c.Request.Context(), req.Message, memory.Turns())

	before := memory.Len()
	memory.Append(models.RoleUser, req.Message)
	memory.Append(models.RoleModel, result.MemoryText())

	err = h.db.AppendTurns(session, memory.Since(before)...)
	if err != nil {
		// The reply is already computed; losing one memory write is
		// better than failing the whole request.
		log.Error().Err(err).Str("session", session.ID).Msg("failed to persist conversation turns")
	}

	c.JSON(http.StatusOK, models.ChatResponse{
		Kind:      result.Kind,
		Response:  result.Text,
		SQL:       result.SQL,
		Table:     result.Table,
		Chart:     result.Chart,
		SessionID: session.ID,
	})
}
