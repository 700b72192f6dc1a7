package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"
)

func newTestAssemblyClient(ts *httptest.Server, maxWait time.Duration) *AssemblyAIClient {
	return &AssemblyAIClient{
		client:       aai.NewClientWithOptions(aai.WithAPIKey("test-key"), aai.WithBaseURL(ts.URL)),
		pollInterval: 10 * time.Millisecond,
		maxWait:      maxWait,
		logger:       zap.NewNop(),
	}
}

func TestTranscribeFromURLCompletes(t *testing.T) {
	var polls int32

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/transcript"):
			var payload map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("invalid submit payload: %v", err)
			}
			if payload["audio_url"] != "http://example.com/audio.mp3" {
				t.Errorf("audio_url = %v", payload["audio_url"])
			}
			if payload["speaker_labels"] != true {
				t.Error("speaker_labels should be requested")
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"id": "transcript-123", "status": "queued"})

		case r.Method == http.MethodGet:
			n := atomic.AddInt32(&polls, 1)
			if n < 2 {
				json.NewEncoder(w).Encode(map[string]interface{}{"id": "transcript-123", "status": "processing"})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":             "transcript-123",
				"status":         "completed",
				"text":           "hello meeting",
				"language_code":  "en",
				"audio_duration": 42.0,
			})

		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer ts.Close()

	client := newTestAssemblyClient(ts, time.Second)
	result, err := client.TranscribeFromURL(context.Background(), "http://example.com/audio.mp3", "en", nil)
	if err != nil {
		t.Fatalf("TranscribeFromURL: %v", err)
	}

	if result.Text != "hello meeting" {
		t.Errorf("text = %q", result.Text)
	}
	if result.Language != "en" {
		t.Errorf("language = %q", result.Language)
	}
	if result.AudioDurationSeconds != 42 {
		t.Errorf("duration = %d", result.AudioDurationSeconds)
	}
	if atomic.LoadInt32(&polls) < 2 {
		t.Errorf("expected at least 2 polls, got %d", polls)
	}
}

func TestTranscribeFromURLJobFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]interface{}{"id": "transcript-bad", "status": "queued"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "transcript-bad",
			"status": "error",
			"error":  "bad audio",
		})
	}))
	defer ts.Close()

	client := newTestAssemblyClient(ts, time.Second)
	_, err := client.TranscribeFromURL(context.Background(), "http://example.com/audio.mp3", "", nil)

	var jobErr *JobFailedError
	if !errors.As(err, &jobErr) {
		t.Fatalf("expected JobFailedError, got %v", err)
	}
	if jobErr.Message != "bad audio" {
		t.Errorf("message = %q", jobErr.Message)
	}
}

func TestTranscribeFromURLTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]interface{}{"id": "transcript-slow", "status": "queued"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "transcript-slow", "status": "processing"})
	}))
	defer ts.Close()

	client := newTestAssemblyClient(ts, 5*time.Millisecond)
	_, err := client.TranscribeFromURL(context.Background(), "http://example.com/audio.mp3", "", nil)

	if !errors.Is(err, ErrTranscriptionTimeout) {
		t.Fatalf("expected ErrTranscriptionTimeout, got %v", err)
	}
}

func TestTranscribeFromURLCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]interface{}{"id": "transcript-1", "status": "queued"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "transcript-1", "status": "processing"})
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	client := newTestAssemblyClient(ts, time.Minute)
	_, err := client.TranscribeFromURL(ctx, "http://example.com/audio.mp3", "", nil)
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
}

func TestJobFailedErrorMessage(t *testing.T) {
	err := &JobFailedError{Message: "unsupported codec"}
	want := fmt.Sprintf("transcription job failed: %s", "unsupported codec")
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
