package runcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type contextKey string

var (
	keyMeetingID contextKey = "meeting_id"
	keyTrigger   contextKey = "trigger"
	keyStartTime contextKey = "run_start_time"
)

// RunMetadata describes a single pipeline run
type RunMetadata struct {
	MeetingID uuid.UUID
	Trigger   string // "upload", "text", "retry" or "summarize"
	StartTime time.Time
}

// Begin derives a run context carrying meeting metadata and a run timeout.
// The cancel func must be deferred by the caller.
func Begin(parent context.Context, meetingID uuid.UUID, trigger string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)

	ctx = context.WithValue(ctx, keyMeetingID, meetingID)
	ctx = context.WithValue(ctx, keyTrigger, trigger)
	ctx = context.WithValue(ctx, keyStartTime, time.Now())

	return ctx, cancel
}

// MeetingID extracts the meeting ID from a run context
func MeetingID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(keyMeetingID).(uuid.UUID)
	return id, ok
}

// Trigger extracts what started this run
func Trigger(ctx context.Context) string {
	t, ok := ctx.Value(keyTrigger).(string)
	if !ok {
		return "unknown"
	}
	return t
}

// Elapsed returns the wall time since the run began, or zero when the
// context is not a run context.
func Elapsed(ctx context.Context) time.Duration {
	start, ok := ctx.Value(keyStartTime).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}

// Metadata extracts everything at once for logging
func Metadata(ctx context.Context) *RunMetadata {
	id, _ := MeetingID(ctx)
	start, _ := ctx.Value(keyStartTime).(time.Time)
	return &RunMetadata{
		MeetingID: id,
		Trigger:   Trigger(ctx),
		StartTime: start,
	}
}
