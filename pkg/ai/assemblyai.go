package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-scribe/pkg/config"
)

// ErrTranscriptionTimeout is returned when a transcript job does not reach a
// terminal state within the configured maximum wait.
var ErrTranscriptionTimeout = errors.New("transcription job did not complete in time")

// JobFailedError carries the provider's message for a rejected transcript job
type JobFailedError struct {
	Message string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("transcription job failed: %s", e.Message)
}

// TranscriptResult is the outcome of a completed transcription
type TranscriptResult struct {
	Text                 string
	Language             string
	AudioDurationSeconds int
}

// AssemblyAIClient wraps the official SDK: submit a job, poll until terminal.
// Provider-reported job failures are never retried here; the caller decides.
type AssemblyAIClient struct {
	client       *aai.Client
	pollInterval time.Duration
	maxWait      time.Duration
	logger       *zap.Logger
}

// NewAssemblyAIClient creates a transcription client from config
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig, logger *zap.Logger) *AssemblyAIClient {
	return &AssemblyAIClient{
		client:       aai.NewClient(cfg.APIKey),
		pollInterval: cfg.PollInterval,
		maxWait:      cfg.MaxWait,
		logger:       logger,
	}
}

// TranscribeStream uploads media to the provider first, then transcribes the
// uploaded copy. Used when the storage backend cannot presign a URL.
func (c *AssemblyAIClient) TranscribeStream(ctx context.Context, r io.Reader, language string, hints []string) (*TranscriptResult, error) {
	uploadURL, err := c.client.Upload(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("media uploaded to provider", zap.String("upload_url", uploadURL))
	}

	return c.TranscribeFromURL(ctx, uploadURL, language, hints)
}

// TranscribeFromURL submits a transcript job for audio reachable at audioURL
// and polls until it completes. An empty language enables provider-side
// detection; hints bias recognition toward domain vocabulary.
func (c *AssemblyAIClient) TranscribeFromURL(ctx context.Context, audioURL, language string, hints []string) (*TranscriptResult, error) {
	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
	}
	if language != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(language)
	} else {
		params.LanguageDetection = aai.Bool(true)
	}
	if len(hints) > 0 {
		params.WordBoost = hints
	}

	// Submission can hit transient network errors; retry briefly before
	// giving up. Job-level failures reported by the provider are final.
	var transcriptID string
	submitFn := func() error {
		transcript, err := c.client.Transcripts.SubmitFromURL(ctx, audioURL, params)
		if err != nil {
			return err
		}
		if transcript.ID != nil {
			transcriptID = *transcript.ID
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(submitFn, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("failed to submit transcript job: %w", err)
	}
	if transcriptID == "" {
		return nil, fmt.Errorf("provider returned no transcript id")
	}

	if c.logger != nil {
		c.logger.Info("transcript job submitted",
			zap.String("transcript_id", transcriptID),
			zap.String("language", language),
			zap.Int("hint_count", len(hints)),
		)
	}

	return c.poll(ctx, transcriptID)
}

// poll fetches job status on a fixed interval until the job reaches a
// terminal state or the configured deadline passes.
func (c *AssemblyAIClient) poll(ctx context.Context, transcriptID string) (*TranscriptResult, error) {
	deadline := time.Now().Add(c.maxWait)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transcription cancelled: %w", ctx.Err())
		case <-ticker.C:
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w (waited %s)", ErrTranscriptionTimeout, c.maxWait)
		}

		transcript, err := c.client.Transcripts.Get(ctx, transcriptID)
		if err != nil {
			// Transient API error; keep polling until the deadline
			if c.logger != nil {
				c.logger.Warn("transcript poll failed",
					zap.String("transcript_id", transcriptID),
					zap.Error(err),
				)
			}
			continue
		}

		switch transcript.Status {
		case aai.TranscriptStatusCompleted:
			return resultFromTranscript(transcript), nil
		case aai.TranscriptStatusError:
			msg := "unknown provider error"
			if transcript.Error != nil {
				msg = *transcript.Error
			}
			return nil, &JobFailedError{Message: msg}
		default:
			// queued or processing; keep waiting
		}
	}
}

func resultFromTranscript(t aai.Transcript) *TranscriptResult {
	result := &TranscriptResult{}
	if t.Text != nil {
		result.Text = *t.Text
	}
	if t.LanguageCode != "" {
		result.Language = string(t.LanguageCode)
	}
	if t.AudioDuration != nil {
		result.AudioDurationSeconds = int(*t.AudioDuration)
	}
	return result
}
