package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MeetingStatus represents the lifecycle state of a meeting processing job
type MeetingStatus string

const (
	MeetingStatusQueued     MeetingStatus = "queued"     // Created, waiting for a pipeline run
	MeetingStatusProcessing MeetingStatus = "processing" // A pipeline run is advancing the record
	MeetingStatusDelivered  MeetingStatus = "delivered"  // Terminal: artifacts are ready
	MeetingStatusFailed     MeetingStatus = "failed"     // Terminal: last run aborted, Step holds the error
)

// IsTerminal reports whether no further automatic transition will occur.
// Both terminal states are re-enterable via an explicit retry.
func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingStatusDelivered || s == MeetingStatusFailed
}

// Meeting is the unit of work tracked through the processing pipeline.
// Location fields are opaque strings interpreted only by the storage adapter.
type Meeting struct {
	ID                 uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title              string        `json:"title" gorm:"type:varchar(500);not null"`
	AudioLocation      *string       `json:"audio_location,omitempty" gorm:"type:text"`
	TranscriptLocation *string       `json:"transcript_location,omitempty" gorm:"type:text"`
	SummaryLocation    *string       `json:"summary_location,omitempty" gorm:"type:text"`
	Status             MeetingStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'queued'"`
	Progress           int           `json:"progress" gorm:"type:integer;default:0"`
	Step               string        `json:"step" gorm:"type:text"`
	NotifyAddress      *string       `json:"notify_address,omitempty" gorm:"type:varchar(320)"`
	Language           string        `json:"language,omitempty" gorm:"type:varchar(20)"`
	VocabularyHints    string        `json:"vocabulary_hints,omitempty" gorm:"type:text"`

	// Metadata accumulates run details (durations, models) as jsonb
	Metadata MeetingMetadata `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`

	// ProviderPayload keeps the raw transcription provider response for
	// troubleshooting; not exposed over the API
	ProviderPayload datatypes.JSON `json:"-" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// MeetingMetadata stores additional per-meeting processing details
type MeetingMetadata struct {
	AudioDurationSeconds int    `json:"audio_duration_seconds,omitempty"`
	DetectedLanguage     string `json:"detected_language,omitempty"`
	TranscriptionModel   string `json:"transcription_model,omitempty"`
	SummaryModel         string `json:"summary_model,omitempty"`
	SummaryDegraded      bool   `json:"summary_degraded,omitempty"`
	LastRunMs            int64  `json:"last_run_ms,omitempty"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeetingFromAudio creates a meeting backed by an uploaded recording.
func NewMeetingFromAudio(title, audioLocation string) *Meeting {
	return &Meeting{
		ID:            uuid.New(),
		Title:         title,
		AudioLocation: &audioLocation,
		Status:        MeetingStatusQueued,
		Progress:      0,
		Step:          "queued",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

// NewMeetingFromTranscript creates a meeting from ready transcript text.
// Such meetings skip the transcription stage entirely.
func NewMeetingFromTranscript(title, transcriptLocation string) *Meeting {
	return &Meeting{
		ID:                 uuid.New(),
		Title:              title,
		TranscriptLocation: &transcriptLocation,
		Status:             MeetingStatusQueued,
		Progress:           0,
		Step:               "queued",
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
}

// HasTranscript reports whether a transcript artifact already exists, either
// from a pasted-text submission or a prior partial run. A retry must not
// re-pay transcription cost when this is true.
func (m *Meeting) HasTranscript() bool {
	return m.TranscriptLocation != nil && *m.TranscriptLocation != ""
}

// HasAudio reports whether the meeting has an uploaded recording.
func (m *Meeting) HasAudio() bool {
	return m.AudioLocation != nil && *m.AudioLocation != ""
}

// WantsNotification reports whether a result digest should be emailed.
func (m *Meeting) WantsNotification() bool {
	return m.NotifyAddress != nil && *m.NotifyAddress != ""
}
