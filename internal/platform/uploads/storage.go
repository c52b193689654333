// Package uploads stores user-supplied images and serves them back under
// /uploads/<folder>/<name>. Files live either on local disk or in a MinIO
// bucket; both backends share the Storage interface.
package uploads

import (
	"context"
	"errors"
	"io"
	"time"
)

// Errors returned by the package.
var (
	ErrNotFound        = errors.New("uploads: object not found")
	ErrFileTooLarge    = errors.New("File too large")
	ErrUnsupportedType = errors.New("Only image files (JPEG, JPG, PNG) are allowed")
	ErrInvalidKey      = errors.New("uploads: invalid object key")
	ErrTooManyFiles    = errors.New("Too many files")
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Storage persists objects addressed by "<folder>/<name>" keys.
type Storage interface {
	// Put stores size bytes read from r under key. Existing keys are not
	// overwritten.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Get opens the object stored under key.
	// Returns ErrNotFound when there is no such object.
	Get(ctx context.Context, key string) (io.ReadSeekCloser, ObjectInfo, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}
