package rating

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "cloudflix/services/streaming-api/internal/domain/rating"
	"cloudflix/services/streaming-api/internal/infrastructure/database/entities"
	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

// Repository handles rating persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert inserts or replaces the user's rating for the video.
func (r *Repository) Upsert(ctx context.Context, videoID, userID string, stars int) error {
	entity := entities.Rating{
		VideoID: videoID,
		UserID:  userID,
		Stars:   stars,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "video_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"stars", "updated_at"}),
	}).Create(&entity).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to upsert rating",
			err,
			"9b1c3d5e-0f2a-4b4c-8d6e-7f8a9b0c1d2e",
		)
	}
	return nil
}

func (r *Repository) Summarize(ctx context.Context, videoID string) (*domain.Summary, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&entities.Rating{}).
		Select("COALESCE(AVG(stars), 0) AS average, COUNT(*) AS count").
		Where("video_id = ?", videoID).
		Scan(&row).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to summarize ratings",
			err,
			"1d3e5f7a-2b4c-4d6e-8f8a-9b0c1d2e3f4a",
		)
	}
	return &domain.Summary{
		VideoID: videoID,
		Average: row.Average,
		Count:   row.Count,
	}, nil
}

// GetUserRating returns the user's stars for the video, zero when unrated.
func (r *Repository) GetUserRating(ctx context.Context, videoID, userID string) (int, error) {
	var entity entities.Rating
	err := r.db.WithContext(ctx).
		Where("video_id = ? AND user_id = ?", videoID, userID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get user rating",
			err,
			"3f5a7b9c-4d6e-4f8a-8b0c-1d2e3f4a5b6c",
		)
	}
	return entity.Stars, nil
}
