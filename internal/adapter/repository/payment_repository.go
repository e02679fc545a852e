package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clipmarket/clipmarket/internal/domain/model"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
)

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment record repository
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, record *model.PaymentRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		r.logger.Error("Failed to create payment record",
			zap.String("payment_reference", record.PaymentReference),
			zap.Error(err))
		return fmt.Errorf("failed to create payment record: %w", err)
	}
	return nil
}
