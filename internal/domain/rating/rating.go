// Package rating maintains per-user star ratings and their aggregates.
package rating

import (
	"context"

	"github.com/rs/zerolog"

	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

// Summary aggregates the ratings on one video.
type Summary struct {
	VideoID string  `json:"video_id"`
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// Repository defines rating persistence. Upsert replaces the user's
// previous rating of the video if one exists.
type Repository interface {
	Upsert(ctx context.Context, videoID, userID string, stars int) error
	Summarize(ctx context.Context, videoID string) (*Summary, error)
	GetUserRating(ctx context.Context, videoID, userID string) (int, error)
}

// VideoCatalog is the slice of the video service the rating service needs.
type VideoCatalog interface {
	Exists(ctx context.Context, videoID string) error
}

// Service handles star ratings. One rating per user per video; rating
// again overwrites.
type Service struct {
	repo   Repository
	videos VideoCatalog
	log    zerolog.Logger
}

func NewService(repo Repository, videos VideoCatalog, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		videos: videos,
		log:    log.With().Str("component", "rating-service").Logger(),
	}
}

// Rate records the user's star rating for the video.
func (s *Service) Rate(ctx context.Context, videoID, userID string, stars int) error {
	if stars < 1 || stars > 5 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"stars must be between 1 and 5",
			nil,
			"e5f6a7b8-c9d0-4e1f-8a2b-4c5d6e7f8a9b",
		)
	}
	if err := s.videos.Exists(ctx, videoID); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, videoID, userID, stars)
}

// Summarize returns the video's average rating and rating count.
func (s *Service) Summarize(ctx context.Context, videoID string) (*Summary, error) {
	if err := s.videos.Exists(ctx, videoID); err != nil {
		return nil, err
	}
	return s.repo.Summarize(ctx, videoID)
}

// UserRating returns the requesting user's own rating, zero if none.
func (s *Service) UserRating(ctx context.Context, videoID, userID string) (int, error) {
	if err := s.videos.Exists(ctx, videoID); err != nil {
		return 0, err
	}
	return s.repo.GetUserRating(ctx, videoID, userID)
}
