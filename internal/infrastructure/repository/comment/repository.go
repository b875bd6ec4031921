package comment

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "cloudflix/services/streaming-api/internal/domain/comment"
	"cloudflix/services/streaming-api/internal/infrastructure/database/entities"
	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

// Repository handles comment persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, c *domain.Comment) error {
	entity := entities.Comment{
		ID:       c.ID,
		VideoID:  c.VideoID,
		ParentID: c.ParentID,
		AuthorID: c.AuthorID,
		Body:     c.Body,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create comment",
			err,
			"9d1e3f5a-0b2c-4d4e-8f6a-7b8c9d0e1f2a",
		)
	}
	c.CreatedAt = entity.CreatedAt
	c.UpdatedAt = entity.UpdatedAt
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var entity entities.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"comment not found",
				err,
				"1f3a5b7c-2d4e-4f6a-8b8c-9d0e1f2a3b4c",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get comment by id",
			err,
			"3b5c7d9e-4f6a-4b8c-8d0e-1f2a3b4c5d6e",
		)
	}
	obj := mapEntity(entity)
	return &obj, nil
}

func (r *Repository) ListByVideo(ctx context.Context, videoID string) ([]domain.Comment, error) {
	var rows []entities.Comment
	err := r.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list comments",
			err,
			"5d7e9f1a-6b8c-4d0e-8f2a-3b4c5d6e7f8a",
		)
	}

	out := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapEntity(row))
	}
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Delete(&entities.Comment{}, "id = ?", id).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete comment",
			err,
			"7f9a1b3c-8d0e-4f2a-8b4c-5d6e7f8a9b0c",
		)
	}
	return nil
}

func mapEntity(entity entities.Comment) domain.Comment {
	return domain.Comment{
		ID:        entity.ID,
		VideoID:   entity.VideoID,
		ParentID:  entity.ParentID,
		AuthorID:  entity.AuthorID,
		Body:      entity.Body,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
	}
}
