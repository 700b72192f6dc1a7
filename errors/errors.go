package errors

import (
	"fmt"
	"net/http"
	"time"

	"github.com/johnquangdev/meeting-scribe/internal/domain/entities"
)

// AppError is the custom error type carried across usecase and handler layers
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

// Meeting Errors wrap the domain sentinels so errors.Is works through the
// AppError layer.
func ErrMeetingNotFound(meetingID string) AppError {
	return AppError{
		Raw:      entities.ErrMeetingNotFound,
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_MEETING_NOT_FOUND,
		Message:  "Meeting not found",
	}.WithDetail("meeting_id", meetingID)
}

func ErrMeetingBusy(meetingID string) AppError {
	return AppError{
		Raw:      entities.ErrMeetingBusy,
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_MEETING_BUSY,
		Message:  "Meeting is already being processed",
	}.WithDetail("meeting_id", meetingID)
}

func ErrMissingSource() AppError {
	return AppError{
		Raw:      entities.ErrNoSource,
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_MISSING_SOURCE,
		Message:  "Meeting needs either an audio file or transcript text",
	}
}

func ErrArtifactNotReady(artifact string) AppError {
	err := AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_ARTIFACT_NOT_READY,
		Message:  fmt.Sprintf("%s is not available yet", artifact),
	}
	switch artifact {
	case "transcript":
		err.Raw = entities.ErrNoTranscript
	case "summary":
		err.Raw = entities.ErrNoSummary
	}
	return err
}

// Pipeline Errors
func ErrTranscriptionFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_TRANSCRIPTION_FAILED,
		Message:  "Audio transcription failed",
	}
}

func ErrTranscriptionTimeout(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusGatewayTimeout,
		Code:     ErrorCode_TRANSCRIPTION_TIMEOUT,
		Message:  "Audio transcription did not complete in time",
	}
}

func ErrProcessingFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_PROCESSING_FAILED,
		Message:  "Processing failed",
	}
}

// Integration Errors
func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_STORAGE_FAILED,
		Message:  fmt.Sprintf("Storage operation failed: %s", operation),
	}
}

func ErrExternalAPIFailed(service string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_EXTERNAL_API_FAILED,
		Message:  fmt.Sprintf("External API call failed: %s", service),
	}
}

// Database Errors
func ErrDBQueryFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Database query failed",
	}
}
