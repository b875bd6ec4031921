package video

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "cloudflix/services/streaming-api/internal/domain/video"
	"cloudflix/services/streaming-api/internal/infrastructure/database/entities"
	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

// Repository handles video metadata persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, v *domain.Video) error {
	entity := mapDomain(v)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entity).Error; err != nil {
			return err
		}
		return attachTags(tx, entity.ID, v.Tags)
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create video",
			err,
			"3f7a1b2c-4d5e-4f6a-8b7c-8d9e0f1a2b3c",
		)
	}
	v.CreatedAt = entity.CreatedAt
	v.UpdatedAt = entity.UpdatedAt
	return nil
}

// attachTags upserts the tag rows and links them to the video.
func attachTags(tx *gorm.DB, videoID string, tags []string) error {
	for _, name := range tags {
		var tag entities.Tag
		if err := tx.Where(entities.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return err
		}
		link := entities.VideoTag{VideoID: videoID, TagID: tag.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) tagsFor(ctx context.Context, videoID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&entities.Tag{}).
		Joins("JOIN video_tags ON video_tags.tag_id = tags.id").
		Where("video_tags.video_id = ?", videoID).
		Order("tags.name").
		Pluck("tags.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	var entity entities.Video
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"video not found",
				err,
				"5b8c2d3e-6f7a-4b8c-9d0e-1f2a3b4c5d6e",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get video by id",
			err,
			"7d9e3f4a-8b1c-4d2e-8f3a-4b5c6d7e8f9a",
		)
	}
	obj := mapEntity(entity)
	tags, err := r.tagsFor(ctx, id)
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to load video tags",
			err,
			"9d1e3f5a-2b4c-4d6e-8f8a-0b1c2d3e4f5a",
		)
	}
	obj.Tags = tags
	return &obj, nil
}

func (r *Repository) List(ctx context.Context, q domain.ListQuery) ([]domain.Video, error) {
	query := r.db.WithContext(ctx).
		Model(&entities.Video{}).
		Where("status <> ?", string(domain.StatusDeleted))

	if q.Genre != "" {
		query = query.Where("genre = ?", q.Genre)
	}
	if q.Tag != "" {
		// Select only video columns; the join would otherwise shadow
		// videos.id with tags.id during scanning.
		query = query.
			Select("videos.*").
			Joins("JOIN video_tags ON video_tags.video_id = videos.id").
			Joins("JOIN tags ON tags.id = video_tags.tag_id").
			Where("tags.name = ?", q.Tag)
	}
	if q.Title != "" {
		query = query.Where("title ILIKE ?", "%"+q.Title+"%")
	}

	var rows []entities.Video
	err := query.Order("created_at DESC").Limit(q.Limit).Offset(q.Offset).Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list videos",
			err,
			"9f1a4b5c-0d2e-4f3a-8b4c-5d6e7f8a9b0c",
		)
	}

	out := make([]domain.Video, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapEntity(row))
	}
	return out, nil
}

func (r *Repository) Update(ctx context.Context, v *domain.Video) error {
	entity := mapDomain(v)
	err := r.db.WithContext(ctx).Model(&entities.Video{}).Where("id = ?", v.ID).Updates(map[string]interface{}{
		"title":        entity.Title,
		"description":  entity.Description,
		"genre":        entity.Genre,
		"duration_sec": entity.DurationSec,
	}).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update video",
			err,
			"1b3c5d7e-2f4a-4b6c-8d8e-9f0a1b2c3d4e",
		)
	}
	return nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	err := r.db.WithContext(ctx).Model(&entities.Video{}).Where("id = ?", id).
		Update("status", string(status)).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update video status",
			err,
			"3d5e7f9a-4b6c-4d8e-8f0a-1b2c3d4e5f6a",
		)
	}
	return nil
}

func (r *Repository) IncrementViews(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&entities.Video{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to increment view count",
			err,
			"5f7a9b1c-6d8e-4f0a-8b2c-3d4e5f6a7b8c",
		)
	}
	return nil
}

func (r *Repository) Genres(ctx context.Context) ([]string, error) {
	var genres []string
	err := r.db.WithContext(ctx).
		Model(&entities.Video{}).
		Where("status = ?", string(domain.StatusAvailable)).
		Where("genre <> ''").
		Distinct().
		Order("genre").
		Pluck("genre", &genres).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list genres",
			err,
			"1f3a5b7c-4d6e-4f8a-8b0c-2d3e4f5a6b7c",
		)
	}
	return genres, nil
}

func mapDomain(v *domain.Video) entities.Video {
	return entities.Video{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Genre:       v.Genre,
		DurationSec: v.DurationSec,
		Status:      string(v.Status),
		StorageKey:  v.StorageKey,
		ContentType: v.ContentType,
		Bytes:       v.Bytes,
		UploaderID:  v.UploaderID,
		ViewCount:   v.ViewCount,
	}
}

func mapEntity(entity entities.Video) domain.Video {
	return domain.Video{
		ID:          entity.ID,
		Title:       entity.Title,
		Description: entity.Description,
		Genre:       entity.Genre,
		DurationSec: entity.DurationSec,
		Status:      domain.Status(entity.Status),
		StorageKey:  entity.StorageKey,
		ContentType: entity.ContentType,
		Bytes:       entity.Bytes,
		UploaderID:  entity.UploaderID,
		ViewCount:   entity.ViewCount,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}
