package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
)

type settlementRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSettlementRepository creates a new settlement repository
func NewSettlementRepository(db *gorm.DB, logger *zap.Logger) domainRepo.SettlementRepository {
	return &settlementRepository{
		db:     db,
		logger: logger,
	}
}

// ApplySucceeded settles one succeeded payment inside a single transaction:
// payment record to succeeded, completed purchase inserted, video/buyer/creator
// aggregates bumped. The purchase existence re-check inside the transaction plus
// the unique index on (user_id, video_id, payment_reference) make concurrent
// redelivery safe: one delivery applies, the rest observe and skip.
func (r *settlementRepository) ApplySucceeded(ctx context.Context, s domainRepo.SucceededSettlement) (bool, error) {
	applied := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record model.PaymentRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_reference = ?", s.PaymentReference).
			First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.ErrPaymentNotFound
			}
			return fmt.Errorf("failed to lock payment record: %w", err)
		}

		// Terminal records never transition again; a redelivered success event
		// for an already-settled payment is a no-op.
		if record.Status.IsTerminal() {
			r.logger.Info("Payment already in terminal state, skipping settlement",
				zap.String("payment_reference", s.PaymentReference),
				zap.String("status", string(record.Status)))
			return nil
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":     model.PaymentStatusSucceeded,
			"paid_at":    &now,
			"updated_at": now,
		}
		if s.ChargeReference != "" {
			updates["charge_reference"] = &s.ChargeReference
		}
		if err := tx.Model(&record).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update payment record: %w", err)
		}

		// Re-check purchase existence inside the transaction to close the race
		// against a concurrent redelivery; the unique index is the backstop.
		var count int64
		err = tx.Model(&model.Purchase{}).
			Where("user_id = ? AND video_id = ? AND payment_reference = ?",
				s.UserID, s.VideoID, s.PaymentReference).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check existing purchase: %w", err)
		}
		if count > 0 {
			r.logger.Info("Purchase already recorded, skipping settlement",
				zap.String("payment_reference", s.PaymentReference))
			return nil
		}

		amount := s.Amount()

		purchase := &model.Purchase{
			UserID:           s.UserID,
			VideoID:          s.VideoID,
			PaymentReference: s.PaymentReference,
			Amount:           amount,
			Currency:         s.Currency,
			Status:           model.PurchaseStatusCompleted,
			PurchasedAt:      now,
		}
		if err := tx.Create(purchase).Error; err != nil {
			return fmt.Errorf("failed to create purchase: %w", err)
		}

		var video model.Video
		if err := tx.Select("id", "creator_id").
			Where("id = ?", s.VideoID).
			First(&video).Error; err != nil {
			return fmt.Errorf("failed to load video for settlement: %w", err)
		}

		result := tx.Model(&model.Video{}).
			Where("id = ?", s.VideoID).
			Updates(map[string]interface{}{
				"purchase_count": gorm.Expr("purchase_count + 1"),
				"total_revenue":  gorm.Expr("total_revenue + ?", amount),
				"updated_at":     now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update video aggregates: %w", result.Error)
		}

		result = tx.Model(&model.User{}).
			Where("id = ?", s.UserID).
			Updates(map[string]interface{}{
				"purchase_count": gorm.Expr("purchase_count + 1"),
				"total_spent":    gorm.Expr("total_spent + ?", amount),
				"updated_at":     now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update buyer aggregates: %w", result.Error)
		}

		result = tx.Model(&model.User{}).
			Where("id = ?", video.CreatorID).
			Updates(map[string]interface{}{
				"pending_balance": gorm.Expr("pending_balance + ?", amount),
				"updated_at":      now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to credit creator balance: %w", result.Error)
		}

		applied = true
		return nil
	})

	if err != nil {
		r.logger.Error("Settlement transaction failed",
			zap.String("payment_reference", s.PaymentReference),
			zap.Error(err))
		return false, err
	}

	if applied {
		r.logger.Info("Payment settled",
			zap.String("payment_reference", s.PaymentReference),
			zap.String("user_id", s.UserID.String()),
			zap.String("video_id", s.VideoID.String()),
			zap.String("amount", s.Amount().String()),
			zap.String("currency", s.Currency))
	}

	return applied, nil
}

// ApplyStatus records a non-success outcome for a payment. The update is guarded
// so terminal records are never rewritten; re-applying the same status is a no-op.
func (r *settlementRepository) ApplyStatus(ctx context.Context, reference string, status model.PaymentStatus, failureCode, failureMessage *string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.PaymentRecord{}).
		Where("payment_reference = ?", reference).
		Where("status IN ?", []model.PaymentStatus{
			model.PaymentStatusCreated,
			model.PaymentStatusRequiresAction,
		}).
		Updates(map[string]interface{}{
			"status":          status,
			"failure_code":    failureCode,
			"failure_message": failureMessage,
			"updated_at":      now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update payment status",
			zap.String("payment_reference", reference),
			zap.String("status", string(status)),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update payment status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Either the record is unknown or already terminal. Unknown references
		// are surfaced so the caller can decide; terminal ones stay untouched.
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&model.PaymentRecord{}).
			Where("payment_reference = ?", reference).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to verify payment record: %w", err)
		}
		if count == 0 {
			return domainErrors.ErrPaymentNotFound
		}
		r.logger.Info("Payment already terminal, status update skipped",
			zap.String("payment_reference", reference),
			zap.String("requested_status", string(status)))
	}

	return nil
}
