package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clipmarket/clipmarket/internal/domain/model"
)

// WebhookRepository handles webhook event storage and deduplication
type WebhookRepository interface {
	// SaveEvent inserts the event if its provider id has never been seen.
	// inserted is false when a row already existed, which callers treat as
	// "already delivered".
	SaveEvent(ctx context.Context, eventID, eventType string, data json.RawMessage) (inserted bool, err error)
	MarkProcessed(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string, cause error) error
}

type webhookRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookRepository creates a new webhook repository
func NewWebhookRepository(db *gorm.DB, logger *zap.Logger) WebhookRepository {
	return &webhookRepository{
		db:     db,
		logger: logger,
	}
}

// SaveEvent saves a new webhook event, relying on the unique provider_event_id
// constraint to resolve concurrent deliveries: the first insert wins.
func (r *webhookRepository) SaveEvent(ctx context.Context, eventID, eventType string, data json.RawMessage) (bool, error) {
	var eventData map[string]interface{}
	if err := json.Unmarshal(data, &eventData); err != nil {
		r.logger.Warn("Failed to parse event data for storage",
			zap.String("event_id", eventID),
			zap.Error(err))
	}

	var providerCreated *time.Time
	if created, ok := eventData["created"].(float64); ok {
		t := time.Unix(int64(created), 0)
		providerCreated = &t
	}

	event := &model.WebhookEvent{
		ProviderEventID: eventID,
		EventType:       eventType,
		Status:          model.WebhookStatusPending,
		Payload:         model.JSONB(eventData),
		ProviderCreated: providerCreated,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)

	if result.Error != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to save webhook event: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// MarkProcessed marks a webhook event as processed
func (r *webhookRepository) MarkProcessed(ctx context.Context, eventID string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":       model.WebhookStatusCompleted,
			"processed_at": &now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as processed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as processed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventID)
	}

	return nil
}

// MarkFailed marks a webhook event as failed, storing the cause for later
// reconciliation. The provider redelivers on the non-2xx response, so no retry
// bookkeeping is kept here.
func (r *webhookRepository) MarkFailed(ctx context.Context, eventID string, cause error) error {
	errorMsg := cause.Error()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":     model.WebhookStatusFailed,
			"last_error": &errorMsg,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as failed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as failed: %w", result.Error)
	}

	return nil
}
