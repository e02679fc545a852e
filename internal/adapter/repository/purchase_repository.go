package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clipmarket/clipmarket/internal/domain/model"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
)

type purchaseRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PurchaseRepository {
	return &purchaseRepository{
		db:     db,
		logger: logger,
	}
}

func (r *purchaseRepository) HasCompleted(ctx context.Context, userID, videoID uuid.UUID) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Purchase{}).
		Where("user_id = ? AND video_id = ? AND status = ?",
			userID, videoID, model.PurchaseStatusCompleted).
		Count(&count).Error

	if err != nil {
		r.logger.Error("Failed to check purchase ownership",
			zap.String("user_id", userID.String()),
			zap.String("video_id", videoID.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to check purchase ownership: %w", err)
	}

	return count > 0, nil
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID, params model.PaginationParams) ([]*model.Purchase, int64, error) {
	params.Validate()

	var purchases []*model.Purchase
	var total int64

	query := r.db.WithContext(ctx).
		Model(&model.Purchase{}).
		Where("user_id = ? AND status = ?", userID, model.PurchaseStatusCompleted)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	err := query.
		Preload("Video").
		Order("purchased_at DESC").
		Limit(params.Limit).
		Offset(params.CalculateOffset()).
		Find(&purchases).Error

	if err != nil {
		r.logger.Error("Failed to list purchases",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list purchases: %w", err)
	}

	return purchases, total, nil
}
