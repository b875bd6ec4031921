package history

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "cloudflix/services/streaming-api/internal/domain/history"
	"cloudflix/services/streaming-api/internal/infrastructure/database/entities"
	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

// Repository handles watch history persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert keeps one row per user and video, replacing the old position.
func (r *Repository) Upsert(ctx context.Context, userID string, e domain.Entry) error {
	entity := entities.WatchHistory{
		UserID:      userID,
		VideoID:     e.VideoID,
		PositionSec: e.PositionSec,
		WatchedAt:   e.WatchedAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"position_sec", "watched_at", "updated_at"}),
	}).Create(&entity).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to upsert watch history",
			err,
			"5b7c9d1e-6f8a-4b0c-8d2e-3f4a5b6c7d8e",
		)
	}
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Entry, error) {
	var rows []entities.WatchHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("watched_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list watch history",
			err,
			"7d9e1f3a-8b0c-4d2e-8f4a-5b6c7d8e9f0a",
		)
	}

	out := make([]domain.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Entry{
			VideoID:     row.VideoID,
			PositionSec: row.PositionSec,
			WatchedAt:   row.WatchedAt,
		})
	}
	return out, nil
}
