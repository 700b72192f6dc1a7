package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/johnquangdev/meeting-scribe/pkg/config"
)

const summaryInstruction = `You are a meeting analyst. Analyze the meeting transcript below and respond with STRICT JSON only, no prose and no markdown, matching exactly this shape:
{
  "executive_summary": "2-4 sentence overview of the meeting",
  "key_decisions": ["decision made during the meeting", ...],
  "action_items": [
    {"owner": "person responsible", "task": "what must be done", "due_date": "deadline if mentioned, else empty", "priority": "High|Medium|Low"}
  ]
}

Meeting title: %s

Transcript:
---
%s
---`

// GroqClient is a minimal client for Groq chat-completion calls
type GroqClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewGroqClient creates a Groq client using values from the provided config
func NewGroqClient(cfg *config.GroqConfig) *GroqClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &GroqClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model          string          `json:"model,omitempty"`
	Messages       interface{}     `json:"messages,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat requests structured model output
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateStructuredSummary asks the model for the strict-JSON meeting
// summary and returns the raw assistant content. Parsing and validation
// happen in the pipeline, which also owns the degradation fallback.
func (g *GroqClient) GenerateStructuredSummary(ctx context.Context, transcript, title string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("groq api key not configured")
	}

	prompt := fmt.Sprintf(summaryInstruction, title, transcript)

	reqBody := ChatRequest{
		Model:          g.model,
		Messages:       []map[string]string{{"role": "user", "content": prompt}},
		Temperature:    0.2,
		MaxTokens:      8000,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := g.baseURL + "/openai/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("groq returned status %d", resp.StatusCode)
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty response from groq")
	}
	return cr.Choices[0].Message.Content, nil
}
