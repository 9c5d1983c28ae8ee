package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauss-analytics/gauss-assistant/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestCreateAndGetSession(t *testing.T) {
	database := newTestDB(t)

	session, err := database.CreateSession("diego", "Análisis de ingresos")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "diego", session.UserID)

	got, err := database.GetSession("diego", session.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "Análisis de ingresos", got.Title)
}

func TestGetSessionMissing(t *testing.T) {
	database := newTestDB(t)

	got, err := database.GetSession("diego", "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionsAreScopedPerUser(t *testing.T) {
	database := newTestDB(t)

	session, err := database.CreateSession("diego", "privada")
	require.NoError(t, err)

	got, err := database.GetSession("demo", session.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	sessions, err := database.ListSessions("demo")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestEnsureDefaultSession(t *testing.T) {
	database := newTestDB(t)

	first, err := database.EnsureDefaultSession("demo")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := database.EnsureDefaultSession("demo")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestAppendAndGetTurns(t *testing.T) {
	database := newTestDB(t)

	session, err := database.CreateSession("diego", "chat")
	require.NoError(t, err)

	err = database.AppendTurns(session,
		models.ConversationTurn{Role: models.RoleUser, Text: "cuántos casos hay"},
		models.ConversationTurn{Role: models.RoleModel, Text: "[Tabla generada: Casos]"},
	)
	require.NoError(t, err)
	err = database.AppendTurns(session,
		models.ConversationTurn{Role: models.RoleUser, Text: "gracias"},
	)
	require.NoError(t, err)

	turns, err := database.GetTurns(session.ID)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "cuántos casos hay", turns[0].Text)
	assert.Equal(t, "[Tabla generada: Casos]", turns[1].Text)
	assert.Equal(t, "gracias", turns[2].Text)
}

func TestResetSession(t *testing.T) {
	database := newTestDB(t)

	session, err := database.CreateSession("diego", "chat")
	require.NoError(t, err)
	require.NoError(t, database.AppendTurns(session,
		models.ConversationTurn{Role: models.RoleUser, Text: "hola"},
	))

	require.NoError(t, database.ResetSession(session.ID))

	turns, err := database.GetTurns(session.ID)
	require.NoError(t, err)
	assert.Empty(t, turns)

	// The session itself survives a reset.
	got, err := database.GetSession("diego", session.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestDeleteSession(t *testing.T) {
	database := newTestDB(t)

	session, err := database.CreateSession("diego", "chat")
	require.NoError(t, err)
	require.NoError(t, database.AppendTurns(session,
		models.ConversationTurn{Role: models.RoleUser, Text: "hola"},
	))

	require.NoError(t, database.DeleteSession("diego", session.ID))

	got, err := database.GetSession("diego", session.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	turns, err := database.GetTurns(session.ID)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestListSessionsNewestFirst(t *testing.T) {
	database := newTestDB(t)

	older, err := database.CreateSession("diego", "primera")
	require.NoError(t, err)
	newer, err := database.CreateSession("diego", "segunda")
	require.NoError(t, err)

	// Touch the older session so it becomes most recent.
	require.NoError(t, database.AppendTurns(older,
		models.ConversationTurn{Role: models.RoleUser, Text: "hola"},
	))

	sessions, err := database.ListSessions("diego")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, older.ID, sessions[0].ID)
	assert.Equal(t, newer.ID, sessions[1].ID)
}
