package models

import "time"

// Conversation roles as expected by the Gemini chat API.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ConversationTurn is one entry of the append-only conversation memory.
// Turns are replayed in order as session history on every model call.
type ConversationTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatSession groups the conversation turns of one user-visible chat.
type ChatSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

// Response kinds produced by the assistant pipeline.
const (
	KindText  = "text"
	KindTable = "table"
	KindChart = "chart"
)

type ChatResponse struct {
	Kind      string        `json:"kind"`
	Response  string        `json:"response"`
	SQL       string        `json:"sql,omitempty"`
	Table     *TablePayload `json:"table,omitempty"`
	Chart     *ChartPayload `json:"chart,omitempty"`
	SessionID string        `json:"session_id"`
}

// SQLSynthesisResult is the strict JSON object the model must return
// on the SQL synthesis step. Field names match the prompt contract.
type SQLSynthesisResult struct {
	SQLQuery    string `json:"sqlQuery"`
	Explanation string `json:"explanation"`
}

// Chart kinds the representation step may choose.
const (
	ChartBar  = "bar"
	ChartLine = "line"
	ChartPie  = "pie"
	ChartArea = "area"
)

// RepresentationDecision is the strict JSON object returned by the
// representation step: either "table" or one of the chart kinds, with
// optional inline data points.
type RepresentationDecision struct {
	Type  string       `json:"type"`
	Title string       `json:"title"`
	Data  []ChartPoint `json:"data,omitempty"`
}

type ChartPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type ChartPayload struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Data     []ChartPoint `json:"data"`
	DataKey  string       `json:"dataKey"`
	XAxisKey string       `json:"xAxisKey"`
}

type TablePayload struct {
	Title   string           `json:"title"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// QueryResultSet holds the rows returned by the backend query endpoint.
// Column names are normalized to uppercase on receipt; Columns keeps the
// backend's column order.
type QueryResultSet struct {
	Columns []string
	Rows    []map[string]any
}

// Backend query-execution contract (POST /query/execute).

type QueryExecuteRequest struct {
	Query  string         `json:"query"`
	Params map[string]any `json:"params,omitempty"`
	Limit  int            `json:"limit,omitempty"`
}

type QueryExecuteResponse struct {
	Success         bool             `json:"success"`
	RowsReturned    int              `json:"rows_returned"`
	Columns         []string         `json:"columns"`
	Data            []map[string]any `json:"data"`
	QueryExecuted   string           `json:"query_executed"`
	ExecutionTimeMS float64          `json:"execution_time_ms,omitempty"`
	Message         string           `json:"message,omitempty"`
}

// BackendHealth is the backend GET /health response.
type BackendHealth struct {
	Status         string `json:"status"`
	Database       string `json:"database"`
	Timestamp      string `json:"timestamp,omitempty"`
	Version        string `json:"version,omitempty"`
	TotalRegistros *int64 `json:"total_registros,omitempty"`
}

// Backend AI-analysis contract (POST /ai/analyze).

type AnalyzeRequest struct {
	Query        string `json:"query" binding:"required"`
	UserQuestion string `json:"user_question,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

type AnalyzeResponse struct {
	Success       bool             `json:"success"`
	Statistics    map[string]any   `json:"statistics"`
	AIInsight     string           `json:"ai_insight"`
	DataSample    []map[string]any `json:"data_sample"`
	QueryExecuted string           `json:"query_executed"`
	RowsAnalyzed  int              `json:"rows_analyzed"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
