package video

import (
	"fmt"
	"io"
	"time"
)

// Status tracks a video through its lifecycle.
type Status string

const (
	StatusProcessing  Status = "PROCESSING"
	StatusAvailable   Status = "AVAILABLE"
	StatusUnavailable Status = "UNAVAILABLE"
	StatusDeleted     Status = "DELETED"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusProcessing, StatusAvailable, StatusUnavailable, StatusDeleted:
		return true
	}
	return false
}

// Video represents video metadata; the bytes live behind StorageKey.
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Genre       string    `json:"genre"`
	Tags        []string  `json:"tags,omitempty"`
	DurationSec int64     `json:"duration_sec"`
	Status      Status    `json:"status"`
	StorageKey  string    `json:"storage_key"`
	ContentType string    `json:"content_type"`
	Bytes       int64     `json:"bytes"`
	UploaderID  string    `json:"uploader_id"`
	ViewCount   int64     `json:"view_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UploadRequest carries a new video's metadata and content stream.
type UploadRequest struct {
	Title            string
	Description      string
	Genre            string
	Tags             []string
	DurationSec      int64
	OriginalFilename string
	ContentType      string
	Content          io.Reader
	Size             int64
	UploaderID       string
}

// UpdateRequest carries mutable metadata fields; nil means keep current.
type UpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Genre       *string `json:"genre"`
	DurationSec *int64  `json:"duration_sec"`
}

// ListQuery filters and pages the catalog listing.
type ListQuery struct {
	Genre  string
	Tag    string
	Title  string
	Limit  int
	Offset int
}

// StreamRegion is one contiguous byte region of a stored video, ready to
// be written as a partial content response. The caller owns Reader.
type StreamRegion struct {
	Reader      io.ReadCloser
	Start       int64
	End         int64
	Total       int64
	ContentType string
}

// Length returns the number of bytes in the region.
func (r *StreamRegion) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange renders the Content-Range header value for the region.
func (r *StreamRegion) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, r.Total)
}
