package meeting

import (
	"time"

	"github.com/johnquangdev/meeting-scribe/internal/domain/entities"
)

// Response is the polling read model for one meeting
type Response struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	Progress      int       `json:"progress"`
	Step          string    `json:"step"`
	HasTranscript bool      `json:"has_transcript"`
	HasSummary    bool      `json:"has_summary"`
	NotifyAddress string    `json:"notify_address,omitempty"`
	Language      string    `json:"language,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Metadata *MetadataResponse `json:"metadata,omitempty"`
}

// MetadataResponse exposes run details once transcription has happened
type MetadataResponse struct {
	AudioDurationSeconds int    `json:"audio_duration_seconds,omitempty"`
	DetectedLanguage     string `json:"detected_language,omitempty"`
	SummaryDegraded      bool   `json:"summary_degraded,omitempty"`
}

// FromEntity maps a meeting record to its API shape
func FromEntity(m *entities.Meeting) *Response {
	resp := &Response{
		ID:            m.ID.String(),
		Title:         m.Title,
		Status:        string(m.Status),
		Progress:      m.Progress,
		Step:          m.Step,
		HasTranscript: m.HasTranscript(),
		HasSummary:    m.SummaryLocation != nil && *m.SummaryLocation != "",
		Language:      m.Language,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.NotifyAddress != nil {
		resp.NotifyAddress = *m.NotifyAddress
	}
	if m.Metadata != (entities.MeetingMetadata{}) {
		resp.Metadata = &MetadataResponse{
			AudioDurationSeconds: m.Metadata.AudioDurationSeconds,
			DetectedLanguage:     m.Metadata.DetectedLanguage,
			SummaryDegraded:      m.Metadata.SummaryDegraded,
		}
	}
	return resp
}

// ListResponse wraps a page of meetings
type ListResponse struct {
	Meetings []*Response `json:"meetings"`
	Count    int         `json:"count"`
}

// FromEntities maps a slice of meeting records
func FromEntities(meetings []entities.Meeting) *ListResponse {
	out := make([]*Response, 0, len(meetings))
	for i := range meetings {
		out = append(out, FromEntity(&meetings[i]))
	}
	return &ListResponse{Meetings: out, Count: len(out)}
}

// TranscriptResponse returns transcript text inline
type TranscriptResponse struct {
	MeetingID  string `json:"meeting_id"`
	Transcript string `json:"transcript"`
}
