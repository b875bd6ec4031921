package videoid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyOnce sync.Once
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

// New returns a vid_* ULID string.
func New() string {
	return newWithPrefix("vid")
}

// NewComment returns a cmt_* ULID string.
func NewComment() string {
	return newWithPrefix("cmt")
}

// NewTransaction returns a txn_* ULID string.
func NewTransaction() string {
	return newWithPrefix("txn")
}

func newWithPrefix(prefix string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	return prefix + "_" + strings.ToLower(id.String())
}

// IsValid reports whether the string is a vid_* ULID.
func IsValid(value string) bool {
	if !strings.HasPrefix(value, "vid_") {
		return false
	}
	_, err := Parse(value)
	return err == nil
}

// Parse strips the id prefix and returns the ULID.
func Parse(value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	if idx := strings.Index(value, "_"); idx >= 0 {
		value = value[idx+1:]
	}
	return ulid.Parse(value)
}
