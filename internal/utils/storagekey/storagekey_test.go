package storagekey

import (
	"regexp"
	"strings"
	"sync"
	"testing"
)

func TestNew_Shape(t *testing.T) {
	key := New("My Cool Video!", "raw-export.MP4")

	pattern := regexp.MustCompile(`^\d+_[0-9a-f]{8}_My_Cool_Video\.mp4$`)
	if !pattern.MatchString(key) {
		t.Errorf("New() = %q, want match for %v", key, pattern)
	}
	if !IsValid(key) {
		t.Errorf("IsValid(%q) = false, want true", key)
	}
}

func TestNew_NoExtension(t *testing.T) {
	key := New("clip", "rawfile")
	if strings.Contains(key, ".") {
		t.Errorf("New() = %q, want no extension", key)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces become underscores", "My Cool Video", "My_Cool_Video"},
		{"punctuation stripped", "My Cool Video!", "My_Cool_Video"},
		{"unicode stripped", "vidéo du jour", "vido_du_jour"},
		{"kept characters", "a-b_c.d", "a-b_c.d"},
		{"empty falls back", "", "file"},
		{"only punctuation falls back", "!!!", "file"},
		{"collapses whitespace runs", "a   b\t\nc", "a_b_c"},
		{"truncated to 100", strings.Repeat("x", 150), strings.Repeat("x", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"movie.mp4", ".mp4"},
		{"movie.MP4", ".mp4"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
		{".hidden", ""},
		{"trailingdot.", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := Extension(tt.filename); got != tt.want {
				t.Errorf("Extension(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestNew_UniqueUnderConcurrency(t *testing.T) {
	const workers = 8
	const perWorker = 250

	var mu sync.Mutex
	seen := make(map[string]bool, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				key := New("same title", "same.mp4")
				mu.Lock()
				if seen[key] {
					t.Errorf("duplicate key generated: %q", key)
				}
				seen[key] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("expected %d unique keys, got %d", workers*perWorker, len(seen))
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"generated local key", "1716239023000_a1b2c3d4_My_Video.mp4", true},
		{"generated cloud key", "videos/1716239023000_a1b2c3d4_My_Video.mp4", true},
		{"missing random part", "1716239023000_My_Video.mp4", false},
		{"uppercase hex", "1716239023000_A1B2C3D4_My_Video.mp4", false},
		{"traversal attempt", "../../etc/passwd", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.key); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}
