package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlobStore persists media and text artifacts and hands back opaque location
// strings. Locations are interpreted only by the adapter that produced them.
type BlobStore interface {
	// StoreMedia persists an uploaded recording stream
	StoreMedia(ctx context.Context, r io.Reader, size int64, suggestedName, contentType string) (string, error)

	// StoreText persists text content (transcripts, summary JSON)
	StoreText(ctx context.Context, content, title string) (string, error)

	// FetchText reads back text content previously stored
	FetchText(ctx context.Context, location string) (string, error)

	// Open returns a readable stream over a stored object
	Open(ctx context.Context, location string) (io.ReadCloser, error)

	// Exists reports whether the location still resolves to an object
	Exists(ctx context.Context, location string) (bool, error)

	// PresignedURL returns a time-limited URL for direct download, or an
	// error when the backend cannot presign (local disk)
	PresignedURL(ctx context.Context, location string, expiry time.Duration) (string, error)
}

// objectName builds a collision-resistant name so concurrent uploads never
// overwrite each other: prefix/timestamp-shortid-slug.
func objectName(prefix, suggested string) string {
	return fmt.Sprintf("%s/%s-%s-%s",
		prefix,
		time.Now().UTC().Format("20060102T150405"),
		uuid.NewString()[:8],
		slugify(suggested),
	)
}

// slugify reduces a display name to a safe object-name fragment
func slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "artifact"
	}
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}
