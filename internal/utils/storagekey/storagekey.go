// Package storagekey derives collision-resistant, store-safe object keys
// from user supplied titles and original filenames.
package storagekey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const maxTitleLen = 100

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	unsafePattern     = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	keyPattern        = regexp.MustCompile(`^\d+_[0-9a-f]{8}_[A-Za-z0-9._-]+$`)
)

// New composes a unique storage key of the form
// <epoch-millis>_<random-8-hex>_<sanitized-title><ext>. The extension is
// taken from the original filename when present. Uniqueness comes from the
// timestamp plus the random component, so concurrent calls with identical
// inputs still produce distinct keys.
func New(title, originalFilename string) string {
	return fmt.Sprintf("%d_%s_%s%s",
		time.Now().UnixMilli(),
		randomHex(4),
		Sanitize(title),
		Extension(originalFilename),
	)
}

// Sanitize reduces a free-text name to an alphanumeric+._- token bounded to
// 100 characters. Whitespace runs become single underscores. An empty result
// falls back to "file".
func Sanitize(name string) string {
	s := whitespacePattern.ReplaceAllString(strings.TrimSpace(name), "_")
	s = unsafePattern.ReplaceAllString(s, "")
	if len(s) > maxTitleLen {
		s = s[:maxTitleLen]
	}
	if s == "" {
		return "file"
	}
	return s
}

// Extension returns the lowercased extension of the filename, dot included,
// or an empty string when the filename has none.
func Extension(filename string) string {
	lastDot := strings.LastIndex(filename, ".")
	if lastDot <= 0 || lastDot == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[lastDot:])
}

// IsValid reports whether the value matches the generated key shape,
// ignoring any leading folder prefix.
func IsValid(key string) bool {
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		key = key[idx+1:]
	}
	return keyPattern.MatchString(key)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has bigger problems; fall
		// back to a timestamp-derived value rather than panicking mid-upload.
		return fmt.Sprintf("%08x", uint32(time.Now().UnixNano()))
	}
	return hex.EncodeToString(buf)
}
