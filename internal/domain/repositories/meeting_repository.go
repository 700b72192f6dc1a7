package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-scribe/internal/domain/entities"
)

// MeetingRepository persists meeting records. Every mutation is a single
// read-modify-write against one row so that a polling reader always observes
// either the pre- or post-mutation record, never a torn write.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *entities.Meeting) error

	// GetByID returns (nil, nil) when no record exists
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	List(ctx context.Context, limit int) ([]entities.Meeting, error)

	// SetCheckpoint records pipeline advancement: status=processing plus the
	// new progress value and step description in one update
	SetCheckpoint(ctx context.Context, id uuid.UUID, progress int, step string) error

	SetTranscriptLocation(ctx context.Context, id uuid.UUID, location string) error
	SetSummaryLocation(ctx context.Context, id uuid.UUID, location string) error
	UpdateMetadata(ctx context.Context, id uuid.UUID, meta entities.MeetingMetadata) error

	// SetProviderPayload stores the raw transcription provider response
	SetProviderPayload(ctx context.Context, id uuid.UUID, payload []byte) error

	// MarkDelivered finalizes a successful run: status=delivered, progress=100
	MarkDelivered(ctx context.Context, id uuid.UUID) error

	// MarkFailed finalizes an aborted run: status=failed, progress=100 and a
	// human-readable error in the step field
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}
