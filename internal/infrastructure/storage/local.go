package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrPresignUnsupported is returned by LocalStore.PresignedURL; callers fall
// back to streaming content through the API instead of handing out links.
var ErrPresignUnsupported = errors.New("presigned URLs not supported by local storage")

// LocalStore keeps artifacts on the local filesystem. It is the default
// adapter for development and single-node deployments without object storage.
type LocalStore struct {
	root string
}

// NewLocalStore creates a disk-backed store rooted at dir
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{root: dir}, nil
}

// StoreMedia writes a recording stream to disk
func (l *LocalStore) StoreMedia(ctx context.Context, r io.Reader, size int64, suggestedName, contentType string) (string, error) {
	name := objectName("media", suggestedName)
	if err := l.write(name, r); err != nil {
		return "", err
	}
	return name, nil
}

// StoreText writes text content to disk
func (l *LocalStore) StoreText(ctx context.Context, content, title string) (string, error) {
	name := objectName("text", title)
	if err := l.write(name, strings.NewReader(content)); err != nil {
		return "", err
	}
	return name, nil
}

// FetchText reads back a stored text file
func (l *LocalStore) FetchText(ctx context.Context, location string) (string, error) {
	path, err := l.resolve(location)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", location, err)
	}
	return string(data), nil
}

// Exists checks whether the file is still present
func (l *LocalStore) Exists(ctx context.Context, location string) (bool, error) {
	path, err := l.resolve(location)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PresignedURL always fails for local storage
func (l *LocalStore) PresignedURL(ctx context.Context, location string, expiry time.Duration) (string, error) {
	return "", ErrPresignUnsupported
}

// Open returns a readable stream over a stored object. The transcription
// client uses this to upload media directly when presigning is unavailable.
func (l *LocalStore) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	path, err := l.resolve(location)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (l *LocalStore) write(name string, r io.Reader) error {
	path := filepath.Join(l.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// resolve rejects locations that escape the storage root
func (l *LocalStore) resolve(location string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(location))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid location %q", location)
	}
	return filepath.Join(l.root, clean), nil
}
