package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauss-analytics/gauss-assistant/ai"
	"github.com/gauss-analytics/gauss-assistant/models"
	"github.com/gauss-analytics/gauss-assistant/service"
)

// fakeSession replies from a script, one entry per Send call.
type fakeSession struct {
	replies []string
	errs    []error
	sent    []string
}

func (s *fakeSession) Send(_ context.Context, text string) (string, error) {
	i := len(s.sent)
	s.sent = append(s.sent, text)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i >= len(s.replies) {
		return "", fmt.Errorf("unexpected call %d", i)
	}
	return s.replies[i], nil
}

type fakeLLM struct {
	session      *fakeSession
	systemPrompt string
	history      []models.ConversationTurn
}

func (l *fakeLLM) NewSession(systemPrompt string, history []models.ConversationTurn) Session {
	l.systemPrompt = systemPrompt
	l.history = history
	return l.session
}

type fakeExecutor struct {
	result   *models.QueryResultSet
	err      error
	executed []string
}

func (e *fakeExecutor) ExecuteQuery(_ context.Context, sqlQuery string) (*models.QueryResultSet, error) {
	e.executed = append(e.executed, sqlQuery)
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func newTestOrchestrator(session *fakeSession, executor *fakeExecutor) (*Orchestrator, *fakeLLM) {
	llm := &fakeLLM{session: session}
	return NewOrchestrator(llm, executor, "prompt de sistema"), llm
}

func TestRespondConversationalPath(t *testing.T) {
	session := &fakeSession{replies: []string{`Claro, puedo ayudarte con {"anything": true}`}}
	executor := &fakeExecutor{}
	o, llm := newTestOrchestrator(session, executor)

	history := []models.ConversationTurn{{Role: models.RoleUser, Text: "antes"}}
	result := o.Respond(context.Background(), "Hola, ¿qué puedes hacer?", history)

	assert.Equal(t, models.KindText, result.Kind)
	// The reply passes through verbatim, JSON-looking content included.
	assert.Equal(t, `Claro, puedo ayudarte con {"anything": true}`, result.Text)
	assert.Empty(t, result.SQL)
	assert.Empty(t, executor.executed, "conversational path must never execute SQL")
	assert.Equal(t, "prompt de sistema", llm.systemPrompt)
	assert.Equal(t, history, llm.history)
}

func TestRespondDataPathTable(t *testing.T) {
	session := &fakeSession{replies: []string{
		`{"sqlQuery": "SELECT COMUNIDAD, COUNT(*) AS VALUE FROM T GROUP BY COMUNIDAD", "explanation": "casos por comunidad"}`,
		`{"type": "table", "title": "Casos por comunidad"}`,
	}}
	executor := &fakeExecutor{result: &models.QueryResultSet{
		Columns: []string{"COMUNIDAD", "VALUE"},
		Rows: []map[string]any{
			{"COMUNIDAD": "Madrid", "VALUE": float64(120)},
			{"COMUNIDAD": "Andalucía", "VALUE": float64(95)},
		},
	}}
	o, _ := newTestOrchestrator(session, executor)

	result := o.Respond(context.Background(), "cuántos casos hay por comunidad", nil)

	require.Equal(t, models.KindTable, result.Kind)
	require.NotNil(t, result.Table)
	assert.Equal(t, "Casos por comunidad", result.Table.Title)
	assert.Equal(t, []string{"COMUNIDAD", "VALUE"}, result.Table.Columns)
	assert.Len(t, result.Table.Rows, 2)
	assert.Equal(t, "SELECT COMUNIDAD, COUNT(*) AS VALUE FROM T GROUP BY COMUNIDAD", result.SQL)
	assert.Equal(t, "[Tabla generada: Casos por comunidad]", result.MemoryText())
}

func TestRespondDataPathChartWithInlineData(t *testing.T) {
	session := &fakeSession{replies: []string{
		`{"sqlQuery": "SELECT CATEGORY, VALUE FROM T", "explanation": "distribución por sexo"}`,
		`{"type": "pie", "title": "Distribución por sexo", "data": [{"name": "Mujer", "value": 60}, {"name": "Hombre", "value": 40}]}`,
	}}
	executor := &fakeExecutor{result: &models.QueryResultSet{
		Columns: []string{"CATEGORY", "VALUE"},
		Rows:    []map[string]any{{"CATEGORY": "Mujer", "VALUE": float64(60)}, {"CATEGORY": "Hombre", "VALUE": float64(40)}},
	}}
	o, _ := newTestOrchestrator(session, executor)

	result := o.Respond(context.Background(), "distribución por sexo en gráfica", nil)

	require.Equal(t, models.KindChart, result.Kind)
	require.NotNil(t, result.Chart)
	assert.Equal(t, models.ChartPie, result.Chart.Type)
	assert.Equal(t, "Distribución por sexo", result.Chart.Title)
	assert.Equal(t, "value", result.Chart.DataKey)
	assert.Equal(t, "name", result.Chart.XAxisKey)
	require.Len(t, result.Chart.Data, 2)
	assert.Equal(t, "Mujer", result.Chart.Data[0].Name)
	assert.Equal(t, "distribución por sexo", result.Text)
	assert.Equal(t, "[Gráfica generada: Distribución por sexo]", result.MemoryText())
}

func TestRespondDataPathChartDerivesPoints(t *testing.T) {
	session := &fakeSession{replies: []string{
		`{"sqlQuery": "SELECT CATEGORY, VALUE FROM T", "explanation": ""}`,
		`{"type": "bar", "title": "Casos"}`,
	}}
	executor := &fakeExecutor{result: &models.QueryResultSet{
		Columns: []string{"CATEGORY", "VALUE"},
		Rows:    []map[string]any{{"CATEGORY": "Madrid", "VALUE": float64(120)}},
	}}
	o, _ := newTestOrchestrator(session, executor)

	result := o.Respond(context.Background(), "gráfica de casos", nil)

	require.Equal(t, models.KindChart, result.Kind)
	require.Len(t, result.Chart.Data, 1)
	assert.Equal(t, models.ChartPoint{Name: "Madrid", Value: 120}, result.Chart.Data[0])
}

func TestRespondZeroRows(t *testing.T) {
	session := &fakeSession{replies: []string{
		`{"sqlQuery": "SELECT * FROM T WHERE 1=0", "explanation": "nada"}`,
	}}
	executor := &fakeExecutor{result: &models.QueryResultSet{Columns: []string{"A"}}}
	o, _ := newTestOrchestrator(session, executor)

	result := o.Respond(context.Background(), "cuántos casos imposibles hay", nil)

	assert.Equal(t, models.KindText, result.Kind)
	assert.Equal(t, msgNoResults, result.Text)
	assert.Equal(t, "SELECT * FROM T WHERE 1=0", result.SQL)
	// The representation step is skipped entirely.
	assert.Len(t, session.sent, 1)
}

func TestRespondSynthesisWithoutJSON(t *testing.T) {
	session := &fakeSession{replies: []string{"No entiendo la pregunta."}}
	executor := &fakeExecutor{}
	o, _ := newTestOrchestrator(session, executor)

	result := o.Respond(context.Background(), "cuántos casos hay", nil)

	assert.Equal(t, models.KindText, result.Kind)
	assert.Equal(t, msgSynthesisFailed, result.Text)
	assert.Empty(t, executor.executed)
}

func TestRespondUnsafeQuery(t *testing.T) {
	session := &fakeSession{replies: []string{
		`{"sqlQuery": "DROP TABLE T", "explanation": "mala idea"}`,
	}}
	executor := &fakeExecutor{}
	o, _ := newTestOrchestrator(session, executor)

	result := o.Respond(context.Background(), "cuántos casos hay", nil)

	assert.Equal(t, models.KindText, result.Kind)
	assert.Equal(t, msgUnsafeQuery, result.Text)
	assert.Empty(t, executor.executed, "rejected query must never reach the executor")
}

func TestRespondExecutorFailsClosed(t *testing.T) {
	// A query that passes the validator locally but is refused by the
	// executor's own re-check still degrades to text.
	session := &fakeSession{replies: []string{
		`{"sqlQuery": "SELECT A FROM T", "explanation": ""}`,
	}}
	executor := &fakeExecutor{err: service.ErrUnsafeQuery}
	o, _ := newTestOrchestrator(session, executor)

	result := o.Respond(context.Background(), "cuántos casos hay", nil)

	assert.Equal(t, models.KindText, result.Kind)
	assert.Equal(t, msgUnsafeQuery, result.Text)
}

func TestRespondModelTimeout(t *testing.T) {
	session := &fakeSession{errs: []error{fmt.Errorf("wrapped: %w", ai.ErrTimeout)}}
	executor := &fakeExecutor{}
	o, _ := newTestOrchestrator(session, executor)

	result := o.Respond(context.Background(), "cuántos casos hay", nil)

	assert.Equal(t, models.KindText, result.Kind)
	assert.Equal(t, msgModelTimeout, result.Text)
}

func TestRespondBackendError(t *testing.T) {
	session := &fakeSession{replies: []string{
		`{"sqlQuery": "SELECT BAD FROM T", "explanation": ""}`,
	}}
	executor := &fakeExecutor{err: &service.QueryExecutionError{StatusCode: 400, Detail: "ORA-00904: invalid identifier"}}
	o, _ := newTestOrchestrator(session, executor)

	result := o.Respond(context.Background(), "cuántos casos hay", nil)

	assert.Equal(t, models.KindText, result.Kind)
	assert.Contains(t, result.Text, "ORA-00904")
}

func TestRespondBackendErrorWithoutDetail(t *testing.T) {
	session := &fakeSession{replies: []string{
		`{"sqlQuery": "SELECT A FROM T", "explanation": ""}`,
	}}
	executor := &fakeExecutor{err: &service.QueryExecutionError{StatusCode: 500}}
	o, _ := newTestOrchestrator(session, executor)

	result := o.Respond(context.Background(), "cuántos casos hay", nil)

	assert.Equal(t, models.KindText, result.Kind)
	assert.Equal(t, msgQueryFailed, result.Text)
	assert.NotContains(t, result.Text, ": ")
}

func TestRespondModelUnavailable(t *testing.T) {
	session := &fakeSession{errs: []error{errors.New("connection refused")}}
	executor := &fakeExecutor{}
	o, _ := newTestOrchestrator(session, executor)

	result := o.Respond(context.Background(), "cuántos casos hay", nil)

	assert.Equal(t, models.KindText, result.Kind)
	assert.Equal(t, msgModelUnavailable, result.Text)
}

func TestRespondRepresentationFailureFallsBackToTable(t *testing.T) {
	session := &fakeSession{replies: []string{
		`{"sqlQuery": "SELECT A FROM T", "explanation": ""}`,
		"no pienso responder con JSON",
	}}
	executor := &fakeExecutor{result: &models.QueryResultSet{
		Rows: []map[string]any{{"A": 1}},
	}}
	o, _ := newTestOrchestrator(session, executor)

	result := o.Respond(context.Background(), "cuántos casos hay", nil)

	require.Equal(t, models.KindTable, result.Kind)
	assert.Equal(t, []string{"A"}, result.Table.Columns)
	assert.Len(t, result.Table.Rows, 1)
	// Falls back to the request as title.
	assert.Equal(t, "cuántos casos hay", result.Table.Title)
}

func TestRespondSelectAICommand(t *testing.T) {
	session := &fakeSession{replies: []string{
		`{"sqlQuery": "SELECT A FROM T", "explanation": ""}`,
		`{"type": "table", "title": "Resultados"}`,
	}}
	executor := &fakeExecutor{result: &models.QueryResultSet{Rows: []map[string]any{{"A": 1}}}}
	o, _ := newTestOrchestrator(session, executor)

	// No data keyword besides the command itself.
	result := o.Respond(context.Background(), "select ai dame el desglose completo", nil)

	require.Equal(t, models.KindTable, result.Kind)
	require.Len(t, session.sent, 2)
	// The synthesis prompt carries the stripped request, not the command.
	assert.Contains(t, session.sent[0], "dame el desglose completo")
	assert.NotContains(t, strings.ToLower(session.sent[0]), "select ai dame")
}

func TestRespondRepresentationSampleIsBounded(t *testing.T) {
	rows := make([]map[string]any, 25)
	for i := range rows {
		rows[i] = map[string]any{"CATEGORY": fmt.Sprintf("c%d", i), "VALUE": float64(i)}
	}
	session := &fakeSession{replies: []string{
		`{"sqlQuery": "SELECT CATEGORY, VALUE FROM T", "explanation": ""}`,
		`{"type": "table", "title": "Todos"}`,
	}}
	executor := &fakeExecutor{result: &models.QueryResultSet{Columns: []string{"CATEGORY", "VALUE"}, Rows: rows}}
	o, _ := newTestOrchestrator(session, executor)

	result := o.Respond(context.Background(), "muéstrame todos los casos", nil)

	require.Equal(t, models.KindTable, result.Kind)
	// The table payload keeps every row even though the model only saw a
	// sample.
	assert.Len(t, result.Table.Rows, 25)
	require.Len(t, session.sent, 2)
	assert.NotContains(t, session.sent[1], "c15")
	assert.Contains(t, session.sent[1], "c5")
}
