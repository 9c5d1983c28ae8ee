// Package ai wraps the Gemini generateContent API behind a stateful chat
// session. A session is seeded with the system prompt and the accumulated
// conversation history; the full history is replayed on every call.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gauss-analytics/gauss-assistant/models"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Fixed acknowledgment replayed as the model's first turn, right after
// the system prompt.
const ackMessage = "¡Entendido! Estoy listo para ayudarte con análisis de datos de salud mental. " +
	"Puedo generar visualizaciones o responder preguntas. ¿En qué puedo ayudarte?"

var (
	// ErrMissingAPIKey means no Gemini API key was configured; any model
	// call is a hard precondition failure.
	ErrMissingAPIKey = errors.New("gemini API key is not configured")

	// ErrTimeout means the model call did not complete within the
	// client's deadline.
	ErrTimeout = errors.New("language model call timed out")
)

type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client

	// BaseURL points at the generative-language service; overridable
	// in tests.
	BaseURL string
}

func New(apiKey, model string) *Client {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		BaseURL:    defaultBaseURL,
	}
}

// Gemini wire types.
type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Session holds the replayed message history of one conversation turn's
// model exchanges. It is not safe for concurrent use; the pipeline
// processes one turn at a time.
type Session struct {
	client   *Client
	contents []content
}

// NewSession builds a session seeded with the system prompt, the fixed
// acknowledgment, and the prior history in order.
func (c *Client) NewSession(systemPrompt string, history []models.ConversationTurn) *Session {
	contents := make([]content, 0, len(history)+2)
	contents = append(contents,
		content{Role: models.RoleUser, Parts: []part{{Text: systemPrompt}}},
		content{Role: models.RoleModel, Parts: []part{{Text: ackMessage}}},
	)
	for _, turn := range history {
		contents = append(contents, content{Role: turn.Role, Parts: []part{{Text: turn.Text}}})
	}
	return &Session{client: c, contents: contents}
}

// Send appends text as a user message, performs one generateContent call
// with the full replayed history, records the reply, and returns it.
// Single attempt; transport and service errors propagate to the caller.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	if s.client.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	request := append(append([]content{}, s.contents...),
		content{Role: models.RoleUser, Parts: []part{{Text: text}}})

	payload, err := json.Marshal(generateRequest{Contents: request})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		s.client.BaseURL, s.client.model, s.client.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var parsed generateResponse
		if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
			return "", fmt.Errorf("gemini API error (%d): %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("gemini API error (%d): %s", resp.StatusCode, string(body))
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("gemini parse error: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}

	var reply string
	for _, p := range parsed.Candidates[0].Content.Parts {
		reply += p.Text
	}

	s.contents = append(request, content{Role: models.RoleModel, Parts: []part{{Text: reply}}})
	return reply, nil
}
