package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
)

type payoutRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPayoutRepository creates a new payout repository
func NewPayoutRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PayoutRepository {
	return &payoutRepository{
		db:     db,
		logger: logger,
	}
}

// Record inserts the payout and debits the creator's pending balance atomically.
// The balance row is locked for the duration of the transaction so concurrent
// payouts for the same creator serialize.
func (r *payoutRepository) Record(ctx context.Context, payout *model.Payout) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var creator model.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", payout.CreatorID).
			First(&creator).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.ErrUserNotFound
			}
			return fmt.Errorf("failed to lock creator row: %w", err)
		}

		if creator.PendingBalance.LessThan(payout.Amount) {
			return domainErrors.NewInsufficientBalanceError(payout.Amount, creator.PendingBalance)
		}

		if err := tx.Create(payout).Error; err != nil {
			return fmt.Errorf("failed to create payout: %w", err)
		}

		result := tx.Model(&model.User{}).
			Where("id = ?", payout.CreatorID).
			Update("pending_balance", gorm.Expr("pending_balance - ?", payout.Amount))
		if result.Error != nil {
			return fmt.Errorf("failed to debit pending balance: %w", result.Error)
		}

		return nil
	})

	if err != nil {
		r.logger.Error("Failed to record payout",
			zap.String("creator_id", payout.CreatorID.String()),
			zap.String("amount", payout.Amount.String()),
			zap.Error(err))
		return err
	}

	r.logger.Info("Payout recorded",
		zap.String("creator_id", payout.CreatorID.String()),
		zap.String("amount", payout.Amount.String()),
		zap.String("currency", payout.Currency))

	return nil
}

func (r *payoutRepository) List(ctx context.Context, params model.PaginationParams) ([]*model.Payout, int64, error) {
	params.Validate()

	var payouts []*model.Payout
	var total int64

	if err := r.db.WithContext(ctx).Model(&model.Payout{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payouts: %w", err)
	}

	err := r.db.WithContext(ctx).
		Preload("Creator").
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.CalculateOffset()).
		Find(&payouts).Error

	if err != nil {
		r.logger.Error("Failed to list payouts", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list payouts: %w", err)
	}

	return payouts, total, nil
}

func (r *payoutRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, params model.PaginationParams) ([]*model.Payout, int64, error) {
	params.Validate()

	var payouts []*model.Payout
	var total int64

	query := r.db.WithContext(ctx).
		Model(&model.Payout{}).
		Where("creator_id = ?", creatorID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count creator payouts: %w", err)
	}

	err := query.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.CalculateOffset()).
		Find(&payouts).Error

	if err != nil {
		r.logger.Error("Failed to list creator payouts",
			zap.String("creator_id", creatorID.String()),
			zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list creator payouts: %w", err)
	}

	return payouts, total, nil
}
