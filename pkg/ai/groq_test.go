package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestGroqClient(srv *httptest.Server) *GroqClient {
	return &GroqClient{
		apiKey:  "test-key",
		baseURL: srv.URL,
		model:   "test-model",
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGenerateStructuredSummary(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq ChatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": "{\"executive_summary\": \"ok\"}"}}]}`))
	}))
	defer srv.Close()

	client := newTestGroqClient(srv)
	content, err := client.GenerateStructuredSummary(context.Background(), "the transcript", "Weekly Sync")
	if err != nil {
		t.Fatalf("GenerateStructuredSummary: %v", err)
	}

	if content != `{"executive_summary": "ok"}` {
		t.Errorf("content = %q", content)
	}
	if gotPath != "/openai/v1/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if gotReq.ResponseFormat == nil || gotReq.ResponseFormat.Type != "json_object" {
		t.Error("request should demand json_object output")
	}

	messages, ok := gotReq.Messages.([]interface{})
	if !ok || len(messages) != 1 {
		t.Fatalf("messages = %v", gotReq.Messages)
	}
	msg := messages[0].(map[string]interface{})
	prompt, _ := msg["content"].(string)
	if !strings.Contains(prompt, "the transcript") || !strings.Contains(prompt, "Weekly Sync") {
		t.Error("prompt missing transcript or title")
	}
}

func TestGenerateStructuredSummaryErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, `{}`, "status 500"},
		{"rate limited", http.StatusTooManyRequests, `{}`, "status 429"},
		{"empty choices", http.StatusOK, `{"choices": []}`, "empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := newTestGroqClient(srv)
			_, err := client.GenerateStructuredSummary(context.Background(), "t", "m")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateStructuredSummaryRequiresAPIKey(t *testing.T) {
	client := &GroqClient{client: http.DefaultClient}
	if _, err := client.GenerateStructuredSummary(context.Background(), "t", "m"); err == nil {
		t.Fatal("missing API key should error before any network call")
	}
}
