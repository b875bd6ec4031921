// Package history tracks per-user playback positions.
package history

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

// Entry is one watch history record: the user's latest position in a video.
type Entry struct {
	VideoID     string    `json:"video_id"`
	PositionSec int64     `json:"position_sec"`
	WatchedAt   time.Time `json:"watched_at"`
}

// Repository defines history persistence. Upsert keeps a single row per
// user and video.
type Repository interface {
	Upsert(ctx context.Context, userID string, e Entry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
}

// VideoCatalog is the slice of the video service the history service needs.
type VideoCatalog interface {
	Exists(ctx context.Context, videoID string) error
}

// Service records and recalls where a user stopped watching.
type Service struct {
	repo   Repository
	videos VideoCatalog
	log    zerolog.Logger
}

func NewService(repo Repository, videos VideoCatalog, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		videos: videos,
		log:    log.With().Str("component", "history-service").Logger(),
	}
}

// Record stores the user's playback position, replacing any earlier one.
func (s *Service) Record(ctx context.Context, userID, videoID string, positionSec int64) error {
	if positionSec < 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"position cannot be negative",
			nil,
			"f6a7b8c9-d0e1-4f2a-8b3c-5d6e7f8a9b0c",
		)
	}
	if err := s.videos.Exists(ctx, videoID); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, userID, Entry{
		VideoID:     videoID,
		PositionSec: positionSec,
		WatchedAt:   time.Now().UTC(),
	})
}

// List returns the user's history, most recently watched first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit)
}
