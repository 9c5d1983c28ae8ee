// Package assistant runs the conversational analytics pipeline: it
// routes each message either to the language model as plain chat or
// through SQL synthesis, safety validation, backend execution and a
// representation decision that yields text, a table or a chart.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gauss-analytics/gauss-assistant/ai"
	"github.com/gauss-analytics/gauss-assistant/models"
	"github.com/gauss-analytics/gauss-assistant/service"
	"github.com/gauss-analytics/gauss-assistant/validation"
)

// LLM opens model sessions seeded with a system prompt and prior turns.
type LLM interface {
	NewSession(systemPrompt string, history []models.ConversationTurn) Session
}

// Session is one seeded model conversation.
type Session interface {
	Send(ctx context.Context, text string) (string, error)
}

// QueryExecutor runs a validated SELECT against the data backend.
type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, sqlQuery string) (*models.QueryResultSet, error)
}

// User-facing fallback messages. Every pipeline failure degrades to one
// of these inside a normal text payload; the chat endpoint itself never
// errors for a pipeline failure.
const (
	msgSynthesisFailed  = "No pude generar una consulta válida para tu pregunta. ¿Puedes reformularla con más detalle?"
	msgUnsafeQuery      = "La consulta generada no pasó la validación de seguridad, así que no se ejecutó. Intenta formular la pregunta de otra manera."
	msgNoResults        = "La consulta se ejecutó correctamente pero no devolvió resultados."
	msgQueryFailed      = "La consulta no pudo ejecutarse. Intenta formular la pregunta de otra manera."
	msgModelUnavailable = "Hubo un error al procesar tu mensaje. Por favor, intenta de nuevo."
	msgModelTimeout     = "El modelo tardó demasiado en responder. Por favor, intenta de nuevo."
)

const representationSampleSize = 10

// Orchestrator wires the model, the executor and the system prompt into
// the per-message pipeline. It is stateless; conversation memory is
// passed in per call.
type Orchestrator struct {
	llm          LLM
	executor     QueryExecutor
	systemPrompt string
}

func NewOrchestrator(llm LLM, executor QueryExecutor, systemPrompt string) *Orchestrator {
	return &Orchestrator{llm: llm, executor: executor, systemPrompt: systemPrompt}
}

// Result is the outcome of one message: exactly one representation kind,
// plus the SQL that produced it when the data path ran.
type Result struct {
	Kind  string
	Text  string
	SQL   string
	Table *models.TablePayload
	Chart *models.ChartPayload
}

// MemoryText is the form of the result stored in conversation memory.
// Structured payloads collapse to a placeholder so later turns can
// reference them without replaying row data into the model.
func (r *Result) MemoryText() string {
	switch r.Kind {
	case models.KindChart:
		return fmt.Sprintf("[Gráfica generada: %s]", r.Chart.Title)
	case models.KindTable:
		return fmt.Sprintf("[Tabla generada: %s]", r.Table.Title)
	default:
		return r.Text
	}
}

// Respond processes one user message against the given conversation
// history and returns exactly one representation.
func (o *Orchestrator) Respond(ctx context.Context, input string, history []models.ConversationTurn) *Result {
	session := o.llm.NewSession(o.systemPrompt, history)

	if !NeedsData(input) {
		reply, err := session.Send(ctx, input)
		if err != nil {
			log.Error().Err(err).Msg("model call failed on conversational path")
			return textResult(modelFailureMessage(err))
		}
		// Conversational replies pass through verbatim, even if they
		// happen to contain JSON-looking content.
		return textResult(reply)
	}

	request := StripDataCommand(input)
	if request == "" {
		return textResult(msgSynthesisFailed)
	}
	return o.respondWithData(ctx, session, request)
}

func (o *Orchestrator) respondWithData(ctx context.Context, session Session, request string) *Result {
	raw, err := session.Send(ctx, ai.BuildSynthesisPrompt(request))
	if err != nil {
		log.Error().Err(err).Msg("model call failed during sql synthesis")
		return textResult(modelFailureMessage(err))
	}
	synth, err := ai.ParseSynthesis(raw)
	if err != nil {
		log.Warn().Str("reply", truncate(raw, 200)).Msg("synthesis reply carried no usable sql")
		return textResult(msgSynthesisFailed)
	}

	if !validation.IsSafeQuery(synth.SQLQuery) {
		log.Warn().Str("sql", synth.SQLQuery).Msg("synthesized query rejected by validator")
		return textResult(msgUnsafeQuery)
	}

	rs, err := o.executor.ExecuteQuery(ctx, synth.SQLQuery)
	if err != nil {
		return o.executionFailure(synth.SQLQuery, err)
	}
	if len(rs.Rows) == 0 {
		return &Result{Kind: models.KindText, Text: msgNoResults, SQL: synth.SQLQuery}
	}

	decision := o.decideRepresentation(ctx, session, request, rs)
	return o.render(request, synth, rs, decision)
}

func (o *Orchestrator) executionFailure(sqlQuery string, err error) *Result {
	switch {
	case errors.Is(err, service.ErrUnsafeQuery):
		log.Warn().Str("sql", sqlQuery).Msg("synthesized query rejected by validator")
		return textResult(msgUnsafeQuery)
	case errors.Is(err, service.ErrBackendTimeout):
		log.Error().Str("sql", sqlQuery).Msg("backend query timed out")
		return textResult("La consulta tardó demasiado en ejecutarse. Intenta acotarla con filtros más específicos.")
	default:
		var qe *service.QueryExecutionError
		if errors.As(err, &qe) {
			log.Error().Int("status", qe.StatusCode).Str("detail", qe.Detail).Msg("backend rejected query")
			if qe.Detail == "" {
				return textResult(msgQueryFailed)
			}
			return textResult(fmt.Sprintf("La consulta no pudo ejecutarse: %s", qe.Detail))
		}
		log.Error().Err(err).Msg("backend query failed")
		return textResult(msgModelUnavailable)
	}
}

// decideRepresentation asks the model how to present the result set,
// sending only a bounded sample of rows. A nil decision means fall back
// to a table.
func (o *Orchestrator) decideRepresentation(ctx context.Context, session Session, request string, rs *models.QueryResultSet) *models.RepresentationDecision {
	sample := rs.Rows
	if len(sample) > representationSampleSize {
		sample = sample[:representationSampleSize]
	}
	raw, err := session.Send(ctx, ai.BuildRepresentationPrompt(request, sample, len(rs.Rows)))
	if err != nil {
		log.Warn().Err(err).Msg("representation call failed, defaulting to table")
		return nil
	}
	decision, err := ai.ParseRepresentation(raw)
	if err != nil {
		log.Warn().Str("reply", truncate(raw, 200)).Msg("unparseable representation decision, defaulting to table")
		return nil
	}
	return decision
}

func (o *Orchestrator) render(request string, synth *models.SQLSynthesisResult, rs *models.QueryResultSet, decision *models.RepresentationDecision) *Result {
	title := request
	if decision != nil && decision.Title != "" {
		title = decision.Title
	}

	if decision != nil && isChartType(decision.Type) {
		points := decision.Data
		if len(points) == 0 {
			points = DeriveChartPoints(rs)
		}
		if len(points) > 0 {
			return &Result{
				Kind: models.KindChart,
				SQL:  synth.SQLQuery,
				Chart: &models.ChartPayload{
					Type:     decision.Type,
					Title:    title,
					Data:     points,
					DataKey:  "value",
					XAxisKey: "name",
				},
				Text: chartText(synth),
			}
		}
		// No usable points; a table still shows the data.
	}

	if decision != nil && decision.Type == "text" {
		if text := chartText(synth); text != "" {
			return &Result{Kind: models.KindText, Text: text, SQL: synth.SQLQuery}
		}
	}

	return &Result{
		Kind: models.KindTable,
		SQL:  synth.SQLQuery,
		Table: &models.TablePayload{
			Title:   title,
			Columns: TableColumns(rs),
			Rows:    rs.Rows,
		},
	}
}

func chartText(synth *models.SQLSynthesisResult) string {
	if synth.Explanation != "" {
		return synth.Explanation
	}
	return "Aquí tienes los resultados de tu consulta."
}

func isChartType(t string) bool {
	switch t {
	case models.ChartBar, models.ChartLine, models.ChartPie, models.ChartArea:
		return true
	}
	return false
}

func modelFailureMessage(err error) string {
	if errors.Is(err, ai.ErrTimeout) {
		return msgModelTimeout
	}
	return msgModelUnavailable
}

func textResult(text string) *Result {
	return &Result{Kind: models.KindText, Text: text}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
