package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"cloudflix/services/streaming-api/internal/config"
	"cloudflix/services/streaming-api/internal/infrastructure/metrics"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	cfg := &config.Config{
		LocalStoragePath:    t.TempDir(),
		LocalStorageBaseURL: "/v1/files",
	}
	backend, err := NewLocal(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	return backend
}

func storeBytes(t *testing.T, backend *Local, content []byte, title, filename string) string {
	t.Helper()
	key, err := backend.Store(context.Background(), bytes.NewReader(content), int64(len(content)), title, filename, "video/mp4")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	return key
}

func TestLocal_StoreLoadRoundTrip(t *testing.T) {
	backend := newTestLocal(t)
	content := []byte("not actually an mp4 but close enough")

	key := storeBytes(t, backend, content, "Round Trip", "clip.mp4")
	if !strings.HasSuffix(key, ".mp4") {
		t.Errorf("Store() key = %q, want .mp4 suffix", key)
	}

	res, err := backend.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer res.Close()

	if res.Length() != int64(len(content)) {
		t.Errorf("Length() = %d, want %d", res.Length(), len(content))
	}

	reader, err := res.ReadRange(context.Background(), 0, res.Length()-1)
	if err != nil {
		t.Fatalf("ReadRange() error = %v", err)
	}
	defer reader.Close()

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("round trip mismatch: got %q, want %q", got, content)
	}
}

func TestLocal_ReadRange_Bounded(t *testing.T) {
	backend := newTestLocal(t)
	content := []byte("0123456789")
	key := storeBytes(t, backend, content, "ranged", "ranged.mp4")

	res, err := backend.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer res.Close()

	tests := []struct {
		name       string
		start, end int64
		want       string
	}{
		{"middle region", 2, 5, "2345"},
		{"tail from offset five", 5, 9, "56789"},
		{"single byte", 0, 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := res.ReadRange(context.Background(), tt.start, tt.end)
			if err != nil {
				t.Fatalf("ReadRange(%d, %d) error = %v", tt.start, tt.end, err)
			}
			defer reader.Close()

			got, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadRange(%d, %d) = %q, want %q", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestLocal_Store_EmptyContent(t *testing.T) {
	backend := newTestLocal(t)

	_, err := backend.Store(context.Background(), bytes.NewReader(nil), 0, "empty", "empty.mp4", "video/mp4")
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("Store() error = %v, want ErrEmptyContent", err)
	}
}

func TestLocal_Open_Missing(t *testing.T) {
	backend := newTestLocal(t)

	_, err := backend.Open(context.Background(), "1716239023000_a1b2c3d4_missing.mp4")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Open() error = %v, want ErrNotFound", err)
	}
}

func TestLocal_Delete_Idempotent(t *testing.T) {
	backend := newTestLocal(t)
	key := storeBytes(t, backend, []byte("bytes"), "deleted", "deleted.mp4")

	ok, err := backend.Delete(context.Background(), key)
	if err != nil || !ok {
		t.Fatalf("Delete() = %v, %v; want true, nil", ok, err)
	}

	// Second delete of the same key still reports success.
	ok, err = backend.Delete(context.Background(), key)
	if err != nil || !ok {
		t.Errorf("repeat Delete() = %v, %v; want true, nil", ok, err)
	}

	// A key that was never stored is also not an error.
	ok, err = backend.Delete(context.Background(), "1716239023000_a1b2c3d4_never.mp4")
	if err != nil || !ok {
		t.Errorf("Delete(missing) = %v, %v; want true, nil", ok, err)
	}
}

func TestLocal_PathEscapeRejected(t *testing.T) {
	backend := newTestLocal(t)

	// Plant a sentinel outside the storage root to prove traversal never
	// reaches it.
	outside := filepath.Join(filepath.Dir(backend.root), "sentinel.txt")
	if err := os.WriteFile(outside, []byte("untouchable"), 0644); err != nil {
		t.Fatalf("write sentinel: %v", err)
	}

	escapes := []string{
		"../sentinel.txt",
		"../../etc/passwd",
		"videos/../../sentinel.txt",
		"..",
	}

	for _, key := range escapes {
		t.Run(key, func(t *testing.T) {
			if _, err := backend.Open(context.Background(), key); !errors.Is(err, ErrPathEscape) {
				t.Errorf("Open(%q) error = %v, want ErrPathEscape", key, err)
			}
			if _, err := backend.Delete(context.Background(), key); !errors.Is(err, ErrPathEscape) {
				t.Errorf("Delete(%q) error = %v, want ErrPathEscape", key, err)
			}
			if _, err := backend.GetURL(context.Background(), key); !errors.Is(err, ErrPathEscape) {
				t.Errorf("GetURL(%q) error = %v, want ErrPathEscape", key, err)
			}
		})
	}

	if data, err := os.ReadFile(outside); err != nil || string(data) != "untouchable" {
		t.Errorf("sentinel outside root was touched: %q, %v", data, err)
	}
}

func TestLocal_GetURL(t *testing.T) {
	backend := newTestLocal(t)
	key := storeBytes(t, backend, []byte("bytes"), "My Cool Video!", "clip.mp4")

	url, err := backend.GetURL(context.Background(), key)
	if err != nil {
		t.Fatalf("GetURL() error = %v", err)
	}
	if want := "/v1/files/" + key; url != want {
		t.Errorf("GetURL() = %q, want %q", url, want)
	}
}

func TestLocal_OperationsRecorded(t *testing.T) {
	backend := newTestLocal(t)

	operations := func(operation, status string) float64 {
		return testutil.ToFloat64(metrics.StorageOperationsTotal.WithLabelValues("local", operation, status))
	}
	stores := operations("store", "success")
	opens := operations("open", "success")
	deletes := operations("delete", "success")
	openErrors := operations("open", "error")

	key := storeBytes(t, backend, []byte("bytes"), "measured", "measured.mp4")

	res, err := backend.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	res.Close()

	if _, err := backend.Delete(context.Background(), key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := backend.Open(context.Background(), "1716239023000_a1b2c3d4_missing.mp4"); err == nil {
		t.Fatal("Open(missing) expected error")
	}

	if got := operations("store", "success"); got != stores+1 {
		t.Errorf("store success count = %v, want %v", got, stores+1)
	}
	if got := operations("open", "success"); got != opens+1 {
		t.Errorf("open success count = %v, want %v", got, opens+1)
	}
	if got := operations("delete", "success"); got != deletes+1 {
		t.Errorf("delete success count = %v, want %v", got, deletes+1)
	}
	if got := operations("open", "error"); got != openErrors+1 {
		t.Errorf("open error count = %v, want %v", got, openErrors+1)
	}
}

func TestContentTypeForKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"1716_a1b2c3d4_clip.mp4", "video/mp4"},
		{"videos/1716_a1b2c3d4_clip.webm", "video/webm"},
		{"1716_a1b2c3d4_clip.ogv", "video/ogg"},
		{"1716_a1b2c3d4_clip.mov", "video/quicktime"},
		{"1716_a1b2c3d4_clip.MP4", "video/mp4"},
		{"1716_a1b2c3d4_clip.avi", "application/octet-stream"},
		{"noextension", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := ContentTypeForKey(tt.key); got != tt.want {
				t.Errorf("ContentTypeForKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
