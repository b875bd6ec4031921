package responses

import (
	"time"

	domain "cloudflix/services/streaming-api/internal/domain/video"
)

// VideoResponse is the public shape of video metadata. The storage key
// stays internal.
type VideoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	DurationSec int64     `json:"duration_sec,omitempty"`
	Status      string    `json:"status"`
	ContentType string    `json:"content_type"`
	Bytes       int64     `json:"bytes"`
	ViewCount   int64     `json:"view_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VideoListResponse wraps a page of catalog entries.
type VideoListResponse struct {
	Videos []VideoResponse `json:"videos"`
	Count  int             `json:"count"`
}

// FromVideo maps domain metadata to the public response shape.
func FromVideo(v *domain.Video) VideoResponse {
	return VideoResponse{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Genre:       v.Genre,
		Tags:        v.Tags,
		DurationSec: v.DurationSec,
		Status:      string(v.Status),
		ContentType: v.ContentType,
		Bytes:       v.Bytes,
		ViewCount:   v.ViewCount,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// FromVideos maps a slice of domain metadata.
func FromVideos(videos []domain.Video) VideoListResponse {
	out := make([]VideoResponse, 0, len(videos))
	for i := range videos {
		out = append(out, FromVideo(&videos[i]))
	}
	return VideoListResponse{Videos: out, Count: len(out)}
}
