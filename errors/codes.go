package errors

// ErrorCode identifies a stable machine-readable error category
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1002

	// Meeting
	ErrorCode_MEETING_NOT_FOUND  ErrorCode = 2000
	ErrorCode_MEETING_BUSY       ErrorCode = 2001
	ErrorCode_MISSING_SOURCE     ErrorCode = 2002
	ErrorCode_ARTIFACT_NOT_READY ErrorCode = 2003

	// Pipeline
	ErrorCode_TRANSCRIPTION_FAILED  ErrorCode = 3000
	ErrorCode_TRANSCRIPTION_TIMEOUT ErrorCode = 3001
	ErrorCode_PROCESSING_FAILED     ErrorCode = 3002

	// Integrations
	ErrorCode_STORAGE_FAILED      ErrorCode = 4000
	ErrorCode_EXTERNAL_API_FAILED ErrorCode = 4001
	ErrorCode_DB_QUERY_FAILED     ErrorCode = 4002
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:               "OK",
	ErrorCode_INTERNAL:              "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:      "INVALID_ARGUMENT",
	ErrorCode_INVALID_PAYLOAD:       "INVALID_PAYLOAD",
	ErrorCode_MEETING_NOT_FOUND:     "MEETING_NOT_FOUND",
	ErrorCode_MEETING_BUSY:          "MEETING_BUSY",
	ErrorCode_MISSING_SOURCE:        "MISSING_SOURCE",
	ErrorCode_ARTIFACT_NOT_READY:    "ARTIFACT_NOT_READY",
	ErrorCode_TRANSCRIPTION_FAILED:  "TRANSCRIPTION_FAILED",
	ErrorCode_TRANSCRIPTION_TIMEOUT: "TRANSCRIPTION_TIMEOUT",
	ErrorCode_PROCESSING_FAILED:     "PROCESSING_FAILED",
	ErrorCode_STORAGE_FAILED:        "STORAGE_FAILED",
	ErrorCode_EXTERNAL_API_FAILED:   "EXTERNAL_API_FAILED",
	ErrorCode_DB_QUERY_FAILED:       "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
