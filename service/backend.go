// Package service talks to the Gauss backend REST API: query execution,
// health, statistics views, and the AI analysis endpoint.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gauss-analytics/gauss-assistant/models"
	"github.com/gauss-analytics/gauss-assistant/validation"
)

// MaxQueryRows is the row-limit ceiling sent with every executed query.
const MaxQueryRows = 100

var (
	// ErrUnsafeQuery means the executor refused a query that did not pass
	// the safety validator. The executor re-checks and fails closed even
	// though callers validate first.
	ErrUnsafeQuery = errors.New("refusing to execute a query that failed safety validation")

	// ErrBackendTimeout means the backend call did not complete within
	// the client's deadline.
	ErrBackendTimeout = errors.New("backend call timed out")
)

// QueryExecutionError carries the backend's failure detail for a query
// that was accepted locally but rejected or failed remotely.
type QueryExecutionError struct {
	StatusCode int
	Detail     string
}

func (e *QueryExecutionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("query execution failed (%d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("query execution failed (%d)", e.StatusCode)
}

type BackendClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewBackendClient(baseURL string) *BackendClient {
	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ExecuteQuery runs a validated SELECT through POST /query/execute and
// returns the rows with column names normalized to uppercase. Zero rows
// is a valid result, not an error. Single attempt, no caching, no retry.
func (b *BackendClient) ExecuteQuery(ctx context.Context, sqlQuery string) (*models.QueryResultSet, error) {
	if !validation.IsSafeQuery(sqlQuery) {
		return nil, ErrUnsafeQuery
	}

	reqBody := models.QueryExecuteRequest{Query: sqlQuery, Limit: MaxQueryRows}

	var resp models.QueryExecuteResponse
	if err := b.post(ctx, "/query/execute", reqBody, &resp); err != nil {
		return nil, err
	}

	result := &models.QueryResultSet{
		Columns: make([]string, 0, len(resp.Columns)),
		Rows:    make([]map[string]any, 0, len(resp.Data)),
	}
	for _, col := range resp.Columns {
		result.Columns = append(result.Columns, strings.ToUpper(col))
	}
	for _, row := range resp.Data {
		normalized := make(map[string]any, len(row))
		for k, v := range row {
			normalized[strings.ToUpper(k)] = v
		}
		result.Rows = append(result.Rows, normalized)
	}
	return result, nil
}

// Health fetches the backend health status (GET /health).
func (b *BackendClient) Health(ctx context.Context) (*models.BackendHealth, error) {
	var health models.BackendHealth
	if err := b.get(ctx, "/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Statistics fetches one of the precomputed dashboard statistics views
// (GET /statistics/{kind}) and returns the raw JSON payload.
func (b *BackendClient) Statistics(ctx context.Context, kind string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := b.get(ctx, "/statistics/"+url.PathEscape(kind), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Analyze runs the backend AI-analysis endpoint (POST /ai/analyze).
func (b *BackendClient) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	if req.Limit <= 0 {
		req.Limit = MaxQueryRows
	}
	var resp models.AnalyzeResponse
	if err := b.post(ctx, "/ai/analyze", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueryExamples fetches the backend's example queries (GET /query/examples).
func (b *BackendClient) QueryExamples(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := b.get(ctx, "/query/examples", &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// TableSchema fetches the dataset's column metadata (GET /query/schema).
func (b *BackendClient) TableSchema(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := b.get(ctx, "/query/schema", &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (b *BackendClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return b.do(req, out)
}

func (b *BackendClient) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return b.do(req, out)
}

func (b *BackendClient) do(req *http.Request, out any) error {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
		}
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(body, &failure)
		return &QueryExecutionError{StatusCode: resp.StatusCode, Detail: failure.Detail}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
