package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-scribe/errors"
	"github.com/johnquangdev/meeting-scribe/internal/domain/entities"
	"github.com/johnquangdev/meeting-scribe/internal/domain/repositories"
	"github.com/johnquangdev/meeting-scribe/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-scribe/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-scribe/pkg/ai"
	"github.com/johnquangdev/meeting-scribe/pkg/config"
	"github.com/johnquangdev/meeting-scribe/pkg/mail"
	"github.com/johnquangdev/meeting-scribe/pkg/runcontext"
)

// Transcriber converts stored audio into text
type Transcriber interface {
	TranscribeStream(ctx context.Context, r io.Reader, language string, hints []string) (*ai.TranscriptResult, error)
	TranscribeFromURL(ctx context.Context, audioURL, language string, hints []string) (*ai.TranscriptResult, error)
}

// Summarizer produces the raw structured-summary response for a transcript
type Summarizer interface {
	GenerateStructuredSummary(ctx context.Context, transcript, title string) (string, error)
}

// Notifier delivers the result digest
type Notifier interface {
	Send(ctx context.Context, msg *mail.Message) error
}

// RunMode selects how much of the pipeline a run executes
type RunMode int

const (
	// RunFull drives transcription, summarization and notification
	RunFull RunMode = iota
	// RunTranscribeOnly stops after the transcript is stored
	RunTranscribeOnly
	// RunSummarizeOnly re-runs summarization and notification against an
	// existing transcript
	RunSummarizeOnly
)

// RunOptions configures a single pipeline run
type RunOptions struct {
	Mode    RunMode
	Trigger string
}

// Service is the pipeline orchestrator. It owns every mutation of a meeting
// record during a run: fetch fresh, mutate, save at every checkpoint, so a
// polling reader never sees a torn write.
type Service struct {
	repo        repositories.MeetingRepository
	store       storage.BlobStore
	transcriber Transcriber
	summarizer  Summarizer
	notifier    Notifier
	lease       cache.RunLease
	cfg         *config.PipelineConfig
	logger      *zap.Logger
}

// NewService creates the pipeline orchestrator
func NewService(
	repo repositories.MeetingRepository,
	store storage.BlobStore,
	transcriber Transcriber,
	summarizer Summarizer,
	notifier Notifier,
	lease cache.RunLease,
	cfg *config.PipelineConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:        repo,
		store:       store,
		transcriber: transcriber,
		summarizer:  summarizer,
		notifier:    notifier,
		lease:       lease,
		cfg:         cfg,
		logger:      logger,
	}
}

// CreateUploadInput carries a new meeting backed by an uploaded recording
type CreateUploadInput struct {
	Title           string
	Media           io.Reader
	MediaSize       int64
	Filename        string
	ContentType     string
	NotifyAddress   string
	Language        string
	VocabularyHints string
}

// CreateFromUpload stores the recording and creates a queued meeting record.
// The caller decides whether to run the pipeline inline or in the background.
func (s *Service) CreateFromUpload(ctx context.Context, in CreateUploadInput) (*entities.Meeting, error) {
	location, err := s.store.StoreMedia(ctx, in.Media, in.MediaSize, in.Filename, in.ContentType)
	if err != nil {
		return nil, apperrors.ErrStorageFailed("store media", err)
	}

	meeting := entities.NewMeetingFromAudio(in.Title, location)
	applyOptions(meeting, in.NotifyAddress, in.Language, in.VocabularyHints)

	if err := s.repo.Create(ctx, meeting); err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	s.logger.Info("meeting created from upload",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("audio_location", location),
	)
	return meeting, nil
}

// CreateTextInput carries a new meeting backed by pasted transcript text
type CreateTextInput struct {
	Title           string
	TranscriptText  string
	NotifyAddress   string
	Language        string
	VocabularyHints string
}

// CreateFromText stores the transcript text as an artifact and creates a
// queued meeting record that will skip transcription entirely.
func (s *Service) CreateFromText(ctx context.Context, in CreateTextInput) (*entities.Meeting, error) {
	location, err := s.store.StoreText(ctx, in.TranscriptText, in.Title+"-transcript.txt")
	if err != nil {
		return nil, apperrors.ErrStorageFailed("store transcript", err)
	}

	meeting := entities.NewMeetingFromTranscript(in.Title, location)
	applyOptions(meeting, in.NotifyAddress, in.Language, in.VocabularyHints)

	if err := s.repo.Create(ctx, meeting); err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	s.logger.Info("meeting created from text",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("transcript_location", location),
	)
	return meeting, nil
}

func applyOptions(m *entities.Meeting, notify, language, hints string) {
	if notify != "" {
		m.NotifyAddress = &notify
	}
	m.Language = language
	m.VocabularyHints = hints
}

// Get returns a meeting record for the polling read model
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	if meeting == nil {
		return nil, apperrors.ErrMeetingNotFound(id.String())
	}
	return meeting, nil
}

// List returns the most recent meetings
func (s *Service) List(ctx context.Context, limit int) ([]entities.Meeting, error) {
	meetings, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	return meetings, nil
}

// GetTranscript reads the transcript artifact for a meeting
func (s *Service) GetTranscript(ctx context.Context, id uuid.UUID) (string, error) {
	meeting, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !meeting.HasTranscript() {
		return "", apperrors.ErrArtifactNotReady("transcript")
	}
	text, err := s.store.FetchText(ctx, *meeting.TranscriptLocation)
	if err != nil {
		return "", apperrors.ErrStorageFailed("fetch transcript", err)
	}
	return text, nil
}

// GetSummary reads and parses the structured summary artifact for a meeting
func (s *Service) GetSummary(ctx context.Context, id uuid.UUID) (*entities.SummaryResult, error) {
	meeting, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if meeting.SummaryLocation == nil || *meeting.SummaryLocation == "" {
		return nil, apperrors.ErrArtifactNotReady("summary")
	}
	raw, err := s.store.FetchText(ctx, *meeting.SummaryLocation)
	if err != nil {
		return nil, apperrors.ErrStorageFailed("fetch summary", err)
	}
	var summary entities.SummaryResult
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, apperrors.ErrInternal(fmt.Errorf("stored summary is not valid JSON: %w", err))
	}
	return &summary, nil
}

// Process runs the pipeline state machine against one meeting record. Any
// error out of transcription or a storage write is caught exactly once here:
// the record is marked failed with the message in its step field and the
// error is returned, so synchronous callers still see it while background
// callers find it in the record.
func (s *Service) Process(ctx context.Context, meetingID uuid.UUID, opts RunOptions) error {
	meeting, err := s.repo.GetByID(ctx, meetingID)
	if err != nil {
		return apperrors.ErrDBQueryFailed(err)
	}
	if meeting == nil {
		return apperrors.ErrMeetingNotFound(meetingID.String())
	}

	// A summarize-only request against a meeting with no transcript is a
	// caller error, not a pipeline failure; reject before touching the record.
	if opts.Mode == RunSummarizeOnly && !meeting.HasTranscript() {
		return apperrors.ErrArtifactNotReady("transcript")
	}

	// The lease is best-effort: a second concurrent run is rejected, but a
	// broken lease backend never blocks processing.
	acquired, leaseErr := s.lease.Acquire(ctx, meetingID, s.cfg.LeaseTTL)
	if leaseErr != nil {
		s.logger.Warn("run lease unavailable, proceeding without it",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(leaseErr),
		)
	}
	if !acquired {
		return apperrors.ErrMeetingBusy(meetingID.String())
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.lease.Release(releaseCtx, meetingID); err != nil {
			s.logger.Warn("failed to release run lease",
				zap.String("meeting_id", meetingID.String()),
				zap.Error(err),
			)
		}
	}()

	started := time.Now()
	runErr := s.run(ctx, meeting, opts)
	if runErr != nil {
		s.markFailed(meetingID, runErr)
		return runErr
	}

	s.logger.Info("pipeline run delivered",
		zap.String("meeting_id", meetingID.String()),
		zap.String("trigger", opts.Trigger),
		zap.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// run executes the checkpointed state machine. Checkpoint percentages are
// fixed so that a polling client sees monotonically non-decreasing progress
// within a run.
func (s *Service) run(ctx context.Context, meeting *entities.Meeting, opts RunOptions) error {
	id := meeting.ID

	if err := s.checkpoint(ctx, id, 5, "starting"); err != nil {
		return err
	}

	var transcript string
	if meeting.HasTranscript() {
		if err := s.checkpoint(ctx, id, 10, "reading transcript"); err != nil {
			return err
		}
		text, err := s.store.FetchText(ctx, *meeting.TranscriptLocation)
		if err != nil {
			return apperrors.ErrStorageFailed("read transcript", err)
		}
		transcript = text
	} else {
		if !meeting.HasAudio() {
			return apperrors.ErrMissingSource()
		}
		text, err := s.transcribe(ctx, meeting)
		if err != nil {
			return err
		}
		transcript = text
	}

	if opts.Mode == RunTranscribeOnly {
		return s.deliver(ctx, id)
	}

	if err := s.checkpoint(ctx, id, 75, "summarizing"); err != nil {
		return err
	}
	summary := s.summarize(ctx, transcript, meeting.Title)

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return apperrors.ErrInternal(err)
	}
	summaryLocation, err := s.store.StoreText(ctx, string(summaryJSON), meeting.Title+"-summary.json")
	if err != nil {
		return apperrors.ErrStorageFailed("store summary", err)
	}
	if err := s.repo.SetSummaryLocation(ctx, id, summaryLocation); err != nil {
		return apperrors.ErrDBQueryFailed(err)
	}

	if err := s.checkpoint(ctx, id, 90, "notifying"); err != nil {
		return err
	}
	s.notify(ctx, meeting, summary)

	return s.deliver(ctx, id)
}

// transcribe drives steps 20 through 60: hand the stored audio to the
// provider, persist the resulting transcript and record its location.
// Every failure in here is fatal to the run.
func (s *Service) transcribe(ctx context.Context, meeting *entities.Meeting) (string, error) {
	id := meeting.ID

	if err := s.checkpoint(ctx, id, 20, "uploading audio"); err != nil {
		return "", err
	}

	hints := ai.SplitHints(meeting.VocabularyHints)

	result, err := s.runTranscription(ctx, meeting, hints)
	if err != nil {
		return "", classifyTranscriptionError(err)
	}

	if err := s.checkpoint(ctx, id, 60, "transcription complete"); err != nil {
		return "", err
	}

	location, err := s.store.StoreText(ctx, result.Text, meeting.Title+"-transcript.txt")
	if err != nil {
		return "", apperrors.ErrStorageFailed("store transcript", err)
	}
	if err := s.repo.SetTranscriptLocation(ctx, id, location); err != nil {
		return "", apperrors.ErrDBQueryFailed(err)
	}
	// The in-memory record must track the write or notify would compose the
	// digest without a transcript link.
	meeting.TranscriptLocation = &location

	if payload, err := json.Marshal(result); err == nil {
		if err := s.repo.SetProviderPayload(ctx, id, payload); err != nil {
			s.logger.Warn("failed to store provider payload",
				zap.String("meeting_id", id.String()),
				zap.Error(err),
			)
		}
	}

	meta := meeting.Metadata
	meta.AudioDurationSeconds = result.AudioDurationSeconds
	meta.DetectedLanguage = result.Language
	if err := s.repo.UpdateMetadata(ctx, id, meta); err != nil {
		s.logger.Warn("failed to update metadata",
			zap.String("meeting_id", id.String()),
			zap.Error(err),
		)
	}

	return result.Text, nil
}

// runTranscription prefers handing the provider a presigned URL so media
// never streams through this process; backends that cannot presign (local
// disk) fall back to a direct upload stream.
func (s *Service) runTranscription(ctx context.Context, meeting *entities.Meeting, hints []string) (*ai.TranscriptResult, error) {
	audioURL, err := s.store.PresignedURL(ctx, *meeting.AudioLocation, 2*time.Hour)
	if err == nil {
		return s.transcriber.TranscribeFromURL(ctx, audioURL, meeting.Language, hints)
	}

	s.logger.Info("presigned URL unavailable, streaming media to provider",
		zap.String("meeting_id", meeting.ID.String()),
		zap.Error(err),
	)

	r, err := s.store.Open(ctx, *meeting.AudioLocation)
	if err != nil {
		return nil, apperrors.ErrStorageFailed("open media", err)
	}
	defer r.Close()

	return s.transcriber.TranscribeStream(ctx, r, meeting.Language, hints)
}

// summarize never fails: provider errors and unparseable responses degrade
// to a deterministic fallback so the meeting still delivers.
func (s *Service) summarize(ctx context.Context, transcript, title string) *entities.SummaryResult {
	raw, err := s.summarizer.GenerateStructuredSummary(ctx, transcript, title)
	if err != nil {
		s.logger.Warn("summarization failed, using fallback",
			zap.String("title", title),
			zap.Error(err),
		)
		return FallbackSummary(transcript)
	}

	summary, err := ParseSummaryJSON(raw)
	if err != nil {
		s.logger.Warn("summary response unparseable, using fallback",
			zap.String("title", title),
			zap.Error(err),
		)
		return FallbackSummary(transcript)
	}
	return summary
}

// notify is best-effort: a failed or missing notification never fails the run
func (s *Service) notify(ctx context.Context, meeting *entities.Meeting, summary *entities.SummaryResult) {
	if !meeting.WantsNotification() {
		return
	}

	var transcriptURL string
	if meeting.HasTranscript() {
		if url, err := s.store.PresignedURL(ctx, *meeting.TranscriptLocation, 24*time.Hour); err == nil {
			transcriptURL = url
		}
	}

	msg, err := mail.ComposeDigest(meeting.Title, summary, transcriptURL)
	if err != nil {
		s.logger.Warn("failed to compose digest",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err),
		)
		return
	}
	msg.To = *meeting.NotifyAddress

	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("to", msg.To),
			zap.Error(err),
		)
	}
}

func (s *Service) checkpoint(ctx context.Context, id uuid.UUID, progress int, step string) error {
	if err := s.repo.SetCheckpoint(ctx, id, progress, step); err != nil {
		return apperrors.ErrDBQueryFailed(err)
	}
	return nil
}

func (s *Service) deliver(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkDelivered(ctx, id); err != nil {
		return apperrors.ErrDBQueryFailed(err)
	}
	return nil
}

// markFailed finalizes an aborted run. A fresh context is used because the
// run context may already be cancelled or past its deadline.
func (s *Service) markFailed(id uuid.UUID, runErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := failureMessage(runErr)
	if err := s.repo.MarkFailed(ctx, id, msg); err != nil {
		s.logger.Error("failed to mark meeting as failed",
			zap.String("meeting_id", id.String()),
			zap.Error(err),
		)
	}

	s.logger.Error("pipeline run failed",
		zap.String("meeting_id", id.String()),
		zap.String("error", msg),
	)
}

// failureMessage prefers the provider's own message so the step field reads
// like "Error: transcription job failed: bad audio" rather than a code.
func failureMessage(err error) string {
	var appErr apperrors.AppError
	if errors.As(err, &appErr) && appErr.Raw != nil {
		return appErr.Raw.Error()
	}
	return err.Error()
}

// classifyTranscriptionError maps client errors to typed pipeline failures
func classifyTranscriptionError(err error) error {
	var appErr apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, ai.ErrTranscriptionTimeout) {
		return apperrors.ErrTranscriptionTimeout(err)
	}
	return apperrors.ErrTranscriptionFailed(err)
}

// Schedule runs the pipeline once in the background against the record. The
// failure of a scheduled run is captured only in the record itself.
func (s *Service) Schedule(meetingID uuid.UUID, opts RunOptions) {
	go func() {
		ctx, cancel := runcontext.Begin(context.Background(), meetingID, opts.Trigger, s.cfg.RunTimeout)
		defer cancel()

		if err := s.Process(ctx, meetingID, opts); err != nil {
			s.logger.Error("scheduled run failed",
				zap.String("meeting_id", meetingID.String()),
				zap.String("trigger", runcontext.Trigger(ctx)),
				zap.Duration("elapsed", runcontext.Elapsed(ctx)),
				zap.Error(err),
			)
		}
	}()
}
