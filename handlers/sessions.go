package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/gauss-analytics/gauss-assistant/models"
)

// ListSessionsHandler returns the caller's chat sessions, newest first.
// @Summary      List chat sessions
// @Tags         Chat
// @Produce      json
// @Header       200  {string}  X-User-ID  "User ID"
// @Success      200  {array}   models.ChatSession
// @Router       /api/chat/sessions [get]
func (h *Handlers) ListSessionsHandler(c *gin.Context) {
	uid := userID(c.GetHeader("X-User-ID"))
	if _, err := h.db.EnsureDefaultSession(uid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ensure default session"})
		return
	}
	sessions, err := h.db.ListSessions(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// CreateSessionHandler creates a new empty chat session.
// @Summary      Create a chat session
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        body  body      object  false  "Optional: { \"title\": \"Nueva conversación\" }"
// @Success      201   {object}  models.ChatSession
// @Router       /api/chat/sessions [post]
func (h *Handlers) CreateSessionHandler(c *gin.Context) {
	uid := userID(c.GetHeader("X-User-ID"))
	var body struct {
		Title string `json:"title"`
	}
	_ = c.ShouldBindJSON(&body)
	title := strings.TrimSpace(body.Title)
	if title == "" {
		title = "Nueva conversación"
	}
	session, err := h.db.CreateSession(uid, title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSessionHandler returns one session with its conversation turns.
// @Summary      Get a chat session with its conversation
// @Tags         Chat
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  object  "{ \"session\": ChatSession, \"turns\": ConversationTurn[] }"
// @Failure      404  {object}  map[string]string
// @Router       /api/chat/sessions/{id} [get]
func (h *Handlers) GetSessionHandler(c *gin.Context) {
	uid := userID(c.GetHeader("X-User-ID"))
	session, err := h.db.GetSession(uid, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	turns, err := h.db.GetTurns(session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if turns == nil {
		turns = []models.ConversationTurn{}
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "turns": turns})
}

// ResetSessionHandler wipes a session's conversation memory.
// @Summary      Reset a chat session
// @Tags         Chat
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/chat/sessions/{id}/reset [post]
func (h *Handlers) ResetSessionHandler(c *gin.Context) {
	uid := userID(c.GetHeader("X-User-ID"))
	session, err := h.db.GetSession(uid, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if err := h.db.ResetSession(session.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Info().Str("session", session.ID).Msg("conversation reset")
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// DeleteSessionHandler removes a session and its conversation.
// @Summary      Delete a chat session
// @Tags         Chat
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  map[string]string
// @Router       /api/chat/sessions/{id} [delete]
func (h *Handlers) DeleteSessionHandler(c *gin.Context) {
	uid := userID(c.GetHeader("X-User-ID"))
	if err := h.db.DeleteSession(uid, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
