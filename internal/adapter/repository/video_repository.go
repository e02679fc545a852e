package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
)

type videoRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *gorm.DB, logger *zap.Logger) domainRepo.VideoRepository {
	return &videoRepository{
		db:     db,
		logger: logger,
	}
}

func (r *videoRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	var video model.Video

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&video).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrVideoNotFound
		}
		r.logger.Error("Failed to get video",
			zap.String("video_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return &video, nil
}

func (r *videoRepository) Create(ctx context.Context, video *model.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		r.logger.Error("Failed to create video",
			zap.String("creator_id", video.CreatorID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

// Update writes the mutable metadata columns. Aggregate counters are settlement
// owned and deliberately excluded.
func (r *videoRepository) Update(ctx context.Context, video *model.Video) error {
	result := r.db.WithContext(ctx).
		Model(&model.Video{}).
		Where("id = ?", video.ID).
		Select("title", "description", "price_cents", "currency", "storage_key", "duration_seconds", "updated_at").
		Updates(video)

	if result.Error != nil {
		r.logger.Error("Failed to update video",
			zap.String("video_id", video.ID.String()),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update video: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domainErrors.ErrVideoNotFound
	}

	return nil
}

func (r *videoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Video{})

	if result.Error != nil {
		r.logger.Error("Failed to delete video",
			zap.String("video_id", id.String()),
			zap.Error(result.Error))
		return fmt.Errorf("failed to delete video: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domainErrors.ErrVideoNotFound
	}

	return nil
}

func (r *videoRepository) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.Video{}).
		Where("id = ?", id).
		Update("published", published)

	if result.Error != nil {
		r.logger.Error("Failed to change video publication",
			zap.String("video_id", id.String()),
			zap.Bool("published", published),
			zap.Error(result.Error))
		return fmt.Errorf("failed to change video publication: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domainErrors.ErrVideoNotFound
	}

	return nil
}

func (r *videoRepository) ListPublished(ctx context.Context, params model.PaginationParams) ([]*model.Video, int64, error) {
	params.Validate()

	var videos []*model.Video
	var total int64

	query := r.db.WithContext(ctx).
		Model(&model.Video{}).
		Where("published = ?", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count videos: %w", err)
	}

	err := query.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.CalculateOffset()).
		Find(&videos).Error

	if err != nil {
		r.logger.Error("Failed to list published videos", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list published videos: %w", err)
	}

	return videos, total, nil
}

func (r *videoRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, params model.PaginationParams) ([]*model.Video, int64, error) {
	params.Validate()

	var videos []*model.Video
	var total int64

	query := r.db.WithContext(ctx).
		Model(&model.Video{}).
		Where("creator_id = ?", creatorID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count creator videos: %w", err)
	}

	err := query.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.CalculateOffset()).
		Find(&videos).Error

	if err != nil {
		r.logger.Error("Failed to list creator videos",
			zap.String("creator_id", creatorID.String()),
			zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list creator videos: %w", err)
	}

	return videos, total, nil
}
