package meeting

// CreateFromTextRequest submits a meeting as pasted transcript text
type CreateFromTextRequest struct {
	Title           string `json:"title" validate:"required,max=500"`
	TranscriptText  string `json:"transcript_text" validate:"required"`
	NotifyAddress   string `json:"notify_address" validate:"omitempty,email"`
	Language        string `json:"language" validate:"omitempty,max=20"`
	VocabularyHints string `json:"vocabulary_hints"`
	Sync            bool   `json:"sync"`
}

// UploadOptions carries the non-file fields of a multipart upload request.
// The recording itself arrives as the "file" form part.
type UploadOptions struct {
	Title           string `form:"title" validate:"required,max=500"`
	NotifyAddress   string `form:"notify_address" validate:"omitempty,email"`
	Language        string `form:"language" validate:"omitempty,max=20"`
	VocabularyHints string `form:"vocabulary_hints"`
	TranscribeOnly  bool   `form:"transcribe_only"`
	Sync            bool   `form:"sync"`
}
