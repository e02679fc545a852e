package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clipmarket/clipmarket/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := createExtensions(db); err != nil {
		logger.Error("Failed to create extensions", zap.Error(err))
		return err
	}

	err := db.AutoMigrate(
		&model.User{},
		&model.Video{},
		&model.PaymentRecord{},
		&model.Purchase{},
		&model.WebhookEvent{},
		&model.Payout{},
		&model.CreatorChannel{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates partial indexes that GORM tags cannot express
func createCustomIndexes(db *gorm.DB) error {
	// Payment records still waiting for a settlement outcome
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payment_records_open ON payment_records (created_at) WHERE status IN ('created', 'requires_action')`).Error; err != nil {
		return err
	}

	// Webhook events that were acknowledged but never applied
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_webhook_events_unapplied ON webhook_events (received_at) WHERE status IN ('pending', 'failed')`).Error; err != nil {
		return err
	}

	// Storefront listing scans only touch published videos
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_videos_published ON videos (created_at DESC) WHERE published = true`).Error; err != nil {
		return err
	}

	return nil
}

// createExtensions creates required PostgreSQL extensions
func createExtensions(db *gorm.DB) error {
	// gen_random_uuid defaults on primary keys
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return err
	}
	return nil
}
