package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cloudflix/services/streaming-api/internal/config"
	"cloudflix/services/streaming-api/internal/utils/storagekey"
)

// Local stores objects on the local filesystem under a single root
// directory. URLs point at the service's own file-serving endpoint and
// never expire.
type Local struct {
	root    string
	baseURL string
	log     zerolog.Logger
}

// NewLocal creates the filesystem backend, creating the storage root if
// needed.
func NewLocal(cfg *config.Config, log zerolog.Logger) (*Local, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	root := strings.TrimSpace(cfg.LocalStoragePath)
	if root == "" {
		return nil, fmt.Errorf("local storage root path cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve local storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create local storage directory: %w", err)
	}

	backend := &Local{
		root:    abs,
		baseURL: strings.TrimSuffix(strings.TrimSpace(cfg.LocalStorageBaseURL), "/"),
		log:     logger,
	}

	logger.Info().
		Str("path", abs).
		Str("base_url", backend.baseURL).
		Msg("local storage initialized")

	return backend, nil
}

// resolve maps a key to an absolute path and rejects anything that escapes
// the storage root after normalization. This runs before every read, write
// and delete.
func (l *Local) resolve(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: empty key", ErrNotFound)
	}
	full := filepath.Clean(filepath.Join(l.root, filepath.FromSlash(key)))
	if full != l.root && !strings.HasPrefix(full, l.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, key)
	}
	if full == l.root {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, key)
	}
	return full, nil
}

func (l *Local) Store(ctx context.Context, content io.Reader, size int64, title, originalFilename, contentType string) (key string, err error) {
	defer func(start time.Time) { observe("local", "store", start, err) }(time.Now())

	if size <= 0 {
		return "", ErrEmptyContent
	}

	key = storagekey.New(title, originalFilename)
	full, err := l.resolve(key)
	if err != nil {
		return "", err
	}

	file, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrUnavailable, key, err)
	}

	written, err := io.Copy(file, content)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("%w: write %s: %v", ErrUnavailable, key, err)
	}

	l.log.Debug().
		Str("key", key).
		Int64("bytes", written).
		Msg("file stored in local storage")

	return key, nil
}

func (l *Local) Open(ctx context.Context, key string) (res Resource, err error) {
	defer func(start time.Time) { observe("local", "open", start, err) }(time.Now())

	full, err := l.resolve(key)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrUnavailable, key, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	return &localResource{path: full, length: info.Size()}, nil
}

// GetURL composes the servable path for the key. Existence is not checked:
// the application itself serves the file and reports NotFound at read time.
func (l *Local) GetURL(ctx context.Context, key string) (string, error) {
	if _, err := l.resolve(key); err != nil {
		return "", err
	}
	return l.baseURL + "/" + filepath.ToSlash(key), nil
}

func (l *Local) Delete(ctx context.Context, key string) (removed bool, err error) {
	defer func(start time.Time) { observe("local", "delete", start, err) }(time.Now())

	full, err := l.resolve(key)
	if err != nil {
		return false, err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			// Idempotent: nothing to remove is not an error.
			return true, nil
		}
		return false, fmt.Errorf("%w: delete %s: %v", ErrUnavailable, key, err)
	}
	return true, nil
}

// Health checks that the storage root is writable.
func (l *Local) Health(ctx context.Context) error {
	probe := filepath.Join(l.root, ".health_check")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("storage root not writable: %w", err)
	}
	_ = os.Remove(probe)
	return nil
}

// localResource holds the resolved path and length; the file itself is
// opened per read so a handle held across requests pins no descriptor.
type localResource struct {
	path   string
	length int64
}

func (r *localResource) Length() int64 {
	return r.length
}

func (r *localResource) ReadRange(ctx context.Context, start, end int64) (io.ReadCloser, error) {
	file, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			// The object was deleted after Open; surface the accepted race
			// as not-found.
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(r.path))
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, filepath.Base(r.path), err)
	}

	return &sectionReadCloser{
		Reader: io.NewSectionReader(file, start, end-start+1),
		file:   file,
	}, nil
}

func (r *localResource) Close() error {
	return nil
}

type sectionReadCloser struct {
	io.Reader
	file *os.File
}

func (s *sectionReadCloser) Close() error {
	return s.file.Close()
}
