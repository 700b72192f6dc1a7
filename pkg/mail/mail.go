package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-scribe/pkg/config"
)

// Message is a composed email ready for delivery
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Client delivers email through the Resend HTTP API. When no API key is
// configured it appends composed messages to a local outbox file so the
// pipeline stays runnable in development.
type Client struct {
	apiKey       string
	baseURL      string
	from         string
	fallbackPath string
	client       *http.Client
	logger       *zap.Logger
}

// NewClient creates a mail client from config
func NewClient(cfg *config.MailConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		from:         cfg.From,
		fallbackPath: cfg.FallbackPath,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send delivers a message. Without an API key the message is written to the
// outbox file instead.
func (c *Client) Send(ctx context.Context, msg *Message) error {
	if msg.To == "" {
		return fmt.Errorf("message has no recipient")
	}

	if c.apiKey == "" {
		return c.writeToOutbox(msg)
	}

	body, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}

	var sr sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err == nil && c.logger != nil {
		c.logger.Info("email delivered",
			zap.String("message_id", sr.ID),
			zap.String("to", msg.To),
		)
	}
	return nil
}

// writeToOutbox appends the composed message to the fallback file
func (c *Client) writeToOutbox(msg *Message) error {
	path := c.fallbackPath
	if path == "" {
		path = "data/outbox.log"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create outbox dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open outbox: %w", err)
	}
	defer f.Close()

	entry := fmt.Sprintf("--- %s\nTo: %s\nSubject: %s\n\n%s\n\n",
		time.Now().UTC().Format(time.RFC3339), msg.To, msg.Subject, msg.Text)
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("failed to append to outbox: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("email written to outbox (no API key configured)",
			zap.String("to", msg.To),
			zap.String("path", path),
		)
	}
	return nil
}
