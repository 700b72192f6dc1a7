package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-scribe/errors"
	"github.com/johnquangdev/meeting-scribe/internal/domain/entities"
	"github.com/johnquangdev/meeting-scribe/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-scribe/pkg/config"
	pkgvalidator "github.com/johnquangdev/meeting-scribe/pkg/validator"
)

// stubService is a canned PipelineService for handler tests
type stubService struct {
	meeting    *entities.Meeting
	getErr     error
	processErr error
	scheduled  int
	processed  int
	lastOpts   pipeline.RunOptions
	createdTxt *pipeline.CreateTextInput
}

func (s *stubService) CreateFromUpload(ctx context.Context, in pipeline.CreateUploadInput) (*entities.Meeting, error) {
	return s.meeting, nil
}

func (s *stubService) CreateFromText(ctx context.Context, in pipeline.CreateTextInput) (*entities.Meeting, error) {
	s.createdTxt = &in
	return s.meeting, nil
}

func (s *stubService) Get(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.meeting, nil
}

func (s *stubService) List(ctx context.Context, limit int) ([]entities.Meeting, error) {
	return []entities.Meeting{*s.meeting}, nil
}

func (s *stubService) GetTranscript(ctx context.Context, id uuid.UUID) (string, error) {
	return "the transcript", nil
}

func (s *stubService) GetSummary(ctx context.Context, id uuid.UUID) (*entities.SummaryResult, error) {
	return &entities.SummaryResult{ExecutiveSummary: "ok"}, nil
}

func (s *stubService) Process(ctx context.Context, id uuid.UUID, opts pipeline.RunOptions) error {
	s.processed++
	s.lastOpts = opts
	return s.processErr
}

func (s *stubService) Schedule(id uuid.UUID, opts pipeline.RunOptions) {
	s.scheduled++
	s.lastOpts = opts
}

func newTestServer(svc PipelineService) *echo.Echo {
	e := echo.New()
	e.Validator = pkgvalidator.New()
	router := NewRouter(&config.Config{}, NewMeetingHandler(svc, zap.NewNop()))
	router.Setup(e)
	return e
}

func testMeeting() *entities.Meeting {
	return entities.NewMeetingFromTranscript("Planning", "text/1")
}

func TestGetMeeting(t *testing.T) {
	svc := &stubService{meeting: testMeeting()}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/meetings/"+svc.meeting.ID.String(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Data.ID != svc.meeting.ID.String() || body.Data.Status != "queued" {
		t.Errorf("data = %+v", body.Data)
	}
}

func TestGetMeetingNotFound(t *testing.T) {
	svc := &stubService{meeting: testMeeting()}
	svc.getErr = apperrors.ErrMeetingNotFound(uuid.NewString())
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/meetings/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetMeetingBadID(t *testing.T) {
	svc := &stubService{meeting: testMeeting()}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/meetings/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreateFromTextSchedulesRun(t *testing.T) {
	svc := &stubService{meeting: testMeeting()}
	e := newTestServer(svc)

	payload := `{"title": "Planning", "transcript_text": "we talked", "notify_address": "dana@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/meetings/text", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.scheduled != 1 || svc.processed != 0 {
		t.Errorf("scheduled=%d processed=%d, want background run", svc.scheduled, svc.processed)
	}
	if svc.createdTxt == nil || svc.createdTxt.NotifyAddress != "dana@example.com" {
		t.Errorf("create input = %+v", svc.createdTxt)
	}
	if svc.lastOpts.Trigger != "text" || svc.lastOpts.Mode != pipeline.RunFull {
		t.Errorf("opts = %+v", svc.lastOpts)
	}
}

func TestCreateFromTextSyncRunsInline(t *testing.T) {
	svc := &stubService{meeting: testMeeting()}
	e := newTestServer(svc)

	payload := `{"title": "Planning", "transcript_text": "we talked", "sync": true}`
	req := httptest.NewRequest(http.MethodPost, "/v1/meetings/text", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.processed != 1 || svc.scheduled != 0 {
		t.Errorf("processed=%d scheduled=%d, want inline run", svc.processed, svc.scheduled)
	}
}

func TestCreateFromTextValidation(t *testing.T) {
	svc := &stubService{meeting: testMeeting()}
	e := newTestServer(svc)

	tests := []struct {
		name    string
		payload string
	}{
		{"missing title", `{"transcript_text": "we talked"}`},
		{"missing transcript", `{"title": "Planning"}`},
		{"bad email", `{"title": "Planning", "transcript_text": "x", "notify_address": "not-an-email"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/meetings/text", strings.NewReader(tt.payload))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRetryBusyConflict(t *testing.T) {
	svc := &stubService{meeting: testMeeting()}
	svc.processErr = apperrors.ErrMeetingBusy(svc.meeting.ID.String())
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/meetings/"+svc.meeting.ID.String()+"/retry?sync=true", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if svc.lastOpts.Trigger != "retry" {
		t.Errorf("trigger = %q, want retry", svc.lastOpts.Trigger)
	}
}

func TestSummarizeUsesSummarizeOnlyMode(t *testing.T) {
	svc := &stubService{meeting: testMeeting()}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/meetings/"+svc.meeting.ID.String()+"/summarize", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.lastOpts.Mode != pipeline.RunSummarizeOnly {
		t.Errorf("mode = %v, want RunSummarizeOnly", svc.lastOpts.Mode)
	}
}

func TestGetTranscript(t *testing.T) {
	svc := &stubService{meeting: testMeeting()}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/meetings/"+svc.meeting.ID.String()+"/transcript", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "the transcript") {
		t.Errorf("body missing transcript: %s", rec.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	svc := &stubService{meeting: testMeeting()}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
