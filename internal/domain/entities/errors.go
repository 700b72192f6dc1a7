package entities

import "errors"

// Domain sentinels. The transport-level error constructors wrap these as
// causes, so callers can branch with errors.Is without depending on HTTP
// codes.
var (
	ErrMeetingNotFound = errors.New("meeting not found")
	ErrMeetingBusy     = errors.New("meeting is already being processed")
	ErrNoSource        = errors.New("meeting needs either audio or transcript text")
	ErrNoTranscript    = errors.New("no transcript available for this meeting")
	ErrNoSummary       = errors.New("no summary available for this meeting")
)
