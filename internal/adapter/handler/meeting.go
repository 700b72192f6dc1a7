package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-scribe/errors"
	meetingdto "github.com/johnquangdev/meeting-scribe/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-scribe/internal/domain/entities"
	"github.com/johnquangdev/meeting-scribe/internal/usecase/pipeline"
)

// PipelineService is the orchestrator surface the HTTP layer depends on
type PipelineService interface {
	CreateFromUpload(ctx context.Context, in pipeline.CreateUploadInput) (*entities.Meeting, error)
	CreateFromText(ctx context.Context, in pipeline.CreateTextInput) (*entities.Meeting, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
	List(ctx context.Context, limit int) ([]entities.Meeting, error)
	GetTranscript(ctx context.Context, id uuid.UUID) (string, error)
	GetSummary(ctx context.Context, id uuid.UUID) (*entities.SummaryResult, error)
	Process(ctx context.Context, id uuid.UUID, opts pipeline.RunOptions) error
	Schedule(id uuid.UUID, opts pipeline.RunOptions)
}

// MeetingHandler exposes the meeting pipeline over HTTP
type MeetingHandler struct {
	service PipelineService
	logger  *zap.Logger
}

// NewMeetingHandler creates a meeting handler
func NewMeetingHandler(service PipelineService, logger *zap.Logger) *MeetingHandler {
	return &MeetingHandler{service: service, logger: logger}
}

// Upload accepts a multipart recording upload and starts the pipeline.
// With sync=true the pipeline runs inline and the final record is returned;
// otherwise the run is scheduled and the queued record comes back immediately.
func (h *MeetingHandler) Upload(c echo.Context) error {
	var opts meetingdto.UploadOptions
	if err := c.Bind(&opts); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&opts); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrMissingSource())
	}
	src, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}
	defer src.Close()

	ctx := c.Request().Context()
	meeting, err := h.service.CreateFromUpload(ctx, pipeline.CreateUploadInput{
		Title:           opts.Title,
		Media:           src,
		MediaSize:       fileHeader.Size,
		Filename:        fileHeader.Filename,
		ContentType:     fileHeader.Header.Get("Content-Type"),
		NotifyAddress:   opts.NotifyAddress,
		Language:        opts.Language,
		VocabularyHints: opts.VocabularyHints,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	mode := pipeline.RunFull
	if opts.TranscribeOnly {
		mode = pipeline.RunTranscribeOnly
	}
	return h.dispatch(c, meeting.ID, pipeline.RunOptions{Mode: mode, Trigger: "upload"}, opts.Sync)
}

// CreateFromText accepts pasted transcript text; the resulting run skips
// transcription entirely.
func (h *MeetingHandler) CreateFromText(c echo.Context) error {
	var req meetingdto.CreateFromTextRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	ctx := c.Request().Context()
	meeting, err := h.service.CreateFromText(ctx, pipeline.CreateTextInput{
		Title:           req.Title,
		TranscriptText:  req.TranscriptText,
		NotifyAddress:   req.NotifyAddress,
		Language:        req.Language,
		VocabularyHints: req.VocabularyHints,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return h.dispatch(c, meeting.ID, pipeline.RunOptions{Mode: pipeline.RunFull, Trigger: "text"}, req.Sync)
}

// Get returns the polling read model for one meeting
func (h *MeetingHandler) Get(c echo.Context) error {
	id, err := h.meetingID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	meeting, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, meetingdto.FromEntity(meeting))
}

// List returns the most recent meetings
func (h *MeetingHandler) List(c echo.Context) error {
	limit := 0
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("limit must be an integer"))
	}
	meetings, err := h.service.List(c.Request().Context(), limit)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, meetingdto.FromEntities(meetings))
}

// Retry re-invokes the pipeline against an existing record. Safe to call
// repeatedly; a run in flight is rejected with 409.
func (h *MeetingHandler) Retry(c echo.Context) error {
	id, err := h.meetingID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	sync := c.QueryParam("sync") == "true"
	return h.dispatch(c, id, pipeline.RunOptions{Mode: pipeline.RunFull, Trigger: "retry"}, sync)
}

// Summarize re-runs summarization and notification against the stored
// transcript, for meetings that were transcribed without analysis.
func (h *MeetingHandler) Summarize(c echo.Context) error {
	id, err := h.meetingID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	sync := c.QueryParam("sync") == "true"
	return h.dispatch(c, id, pipeline.RunOptions{Mode: pipeline.RunSummarizeOnly, Trigger: "summarize"}, sync)
}

// GetTranscript streams the stored transcript text
func (h *MeetingHandler) GetTranscript(c echo.Context) error {
	id, err := h.meetingID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	text, err := h.service.GetTranscript(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, meetingdto.TranscriptResponse{
		MeetingID:  id.String(),
		Transcript: text,
	})
}

// GetSummary returns the parsed structured summary
func (h *MeetingHandler) GetSummary(c echo.Context) error {
	id, err := h.meetingID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	summary, err := h.service.GetSummary(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, summary)
}

// dispatch runs the pipeline inline for sync callers or schedules it once in
// the background, then returns the current record state.
func (h *MeetingHandler) dispatch(c echo.Context, id uuid.UUID, opts pipeline.RunOptions, sync bool) error {
	ctx := c.Request().Context()

	if sync {
		if err := h.service.Process(ctx, id, opts); err != nil {
			return HandleError(h.logger, c, err)
		}
	} else {
		h.service.Schedule(id, opts)
	}

	meeting, err := h.service.Get(ctx, id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, meetingdto.FromEntity(meeting))
}

func (h *MeetingHandler) meetingID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidArgument("meeting id must be a UUID")
	}
	return id, nil
}
