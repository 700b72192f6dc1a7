package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-scribe/internal/domain/entities"
)

// MeetingRepository handles meeting record persistence via GORM
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Create inserts a new meeting record
func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

// GetByID retrieves a meeting by ID, returning (nil, nil) when absent
func (r *MeetingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

// List retrieves the most recent meetings
func (r *MeetingRepository) List(ctx context.Context, limit int) ([]entities.Meeting, error) {
	if limit <= 0 {
		limit = 50
	}
	var meetings []entities.Meeting
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

// SetCheckpoint records pipeline advancement in a single update
func (r *MeetingRepository) SetCheckpoint(ctx context.Context, id uuid.UUID, progress int, step string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entities.MeetingStatusProcessing,
			"progress":   progress,
			"step":       step,
			"updated_at": time.Now(),
		}).Error
}

// SetTranscriptLocation stores the transcript artifact location
func (r *MeetingRepository) SetTranscriptLocation(ctx context.Context, id uuid.UUID, location string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"transcript_location": location,
			"updated_at":          time.Now(),
		}).Error
}

// SetSummaryLocation stores the structured summary artifact location
func (r *MeetingRepository) SetSummaryLocation(ctx context.Context, id uuid.UUID, location string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"summary_location": location,
			"updated_at":       time.Now(),
		}).Error
}

// UpdateMetadata replaces the jsonb metadata blob
func (r *MeetingRepository) UpdateMetadata(ctx context.Context, id uuid.UUID, meta entities.MeetingMetadata) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"metadata":   meta,
			"updated_at": time.Now(),
		}).Error
}

// SetProviderPayload stores the raw transcription provider response as jsonb
func (r *MeetingRepository) SetProviderPayload(ctx context.Context, id uuid.UUID, payload []byte) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"provider_payload": datatypes.JSON(payload),
			"updated_at":       time.Now(),
		}).Error
}

// MarkDelivered finalizes a successful run
func (r *MeetingRepository) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entities.MeetingStatusDelivered,
			"progress":   100,
			"step":       "done",
			"updated_at": time.Now(),
		}).Error
}

// MarkFailed finalizes an aborted run with a human-readable error
func (r *MeetingRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entities.MeetingStatusFailed,
			"progress":   100,
			"step":       fmt.Sprintf("Error: %s", errMsg),
			"updated_at": time.Now(),
		}).Error
}
