// Package storage provides the pluggable object storage layer behind video
// uploads and byte-range streaming. Three backends implement the same
// contract: local filesystem, S3-compatible object storage, and Azure Blob
// storage with SAS tokens. A single backend is selected at process start
// and injected everywhere the storage layer is used.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"cloudflix/services/streaming-api/internal/infrastructure/metrics"
)

var (
	// ErrEmptyContent is returned by Store when the upload stream carries no
	// bytes.
	ErrEmptyContent = errors.New("refusing to store empty content")
	// ErrNotFound is returned when a key has no corresponding object, or the
	// object became unreadable.
	ErrNotFound = errors.New("stored object not found")
	// ErrUnavailable wraps failures of the underlying medium or service on
	// store and delete. Retrying is the caller's decision.
	ErrUnavailable = errors.New("storage backend unavailable")
	// ErrSigning is returned when pre-signed URL generation fails for a key
	// that does exist.
	ErrSigning = errors.New("url signing failed")
	// ErrPathEscape is returned by the local backend when a key resolves
	// outside the storage root. Always fatal, never retried.
	ErrPathEscape = errors.New("storage key escapes the storage root")
)

// Backend is the uniform contract over the storage variants. Objects are
// immutable once stored; re-uploading produces a new key. All operations are
// stateless with respect to each other, so concurrent calls are safe without
// locking.
type Backend interface {
	// Store persists the content under a freshly generated storage key and
	// returns that key. The title only influences the readable part of the
	// key; the extension is preserved from the original filename.
	Store(ctx context.Context, content io.Reader, size int64, title, originalFilename, contentType string) (string, error)

	// Open returns a lazily-readable handle to the object's bytes. The
	// caller must Close the handle on every exit path.
	Open(ctx context.Context, key string) (Resource, error)

	// GetURL produces a playable URL for the key: a path under the
	// configured base URL for the local backend, or a time-limited signed
	// URL for the cloud backends.
	GetURL(ctx context.Context, key string) (string, error)

	// Delete removes the object. Deleting an absent key is not an error and
	// reports true; false is returned only on a genuine I/O or service
	// failure.
	Delete(ctx context.Context, key string) (bool, error)

	// Health verifies the backing medium is reachable.
	Health(ctx context.Context) error
}

// Resource is an open handle to a stored object with deferred I/O.
type Resource interface {
	// Length returns the total content length in bytes.
	Length() int64
	// ReadRange returns a reader over the inclusive byte region
	// [start, end]. The caller closes the returned reader.
	ReadRange(ctx context.Context, start, end int64) (io.ReadCloser, error)
	// Close releases the handle.
	Close() error
}

// observe records one backend operation for the storage metrics.
func observe(backend, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordStorageOperation(backend, operation, status, time.Since(start).Seconds())
}

// ContentTypeForKey resolves a streaming content type from the key's file
// extension.
func ContentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".ogv", ".ogg":
		return "video/ogg"
	case ".mov":
		return "video/quicktime"
	default:
		return "application/octet-stream"
	}
}
