package model

import (
	"database/sql/driver"
	"time"
)

// WebhookStatus represents the processing status of a webhook event
type WebhookStatus string

const (
	WebhookStatusPending   WebhookStatus = "pending"
	WebhookStatusCompleted WebhookStatus = "completed"
	WebhookStatusFailed    WebhookStatus = "failed"
)

// Scan implements sql.Scanner interface
func (w *WebhookStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*w = WebhookStatus(v)
	case []byte:
		*w = WebhookStatus(v)
	default:
		*w = WebhookStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (w WebhookStatus) Value() (driver.Value, error) {
	return string(w), nil
}

// WebhookEvent records a delivered payment-provider event. The unique constraint on
// ProviderEventID is the first safety net against duplicate settlement: the first
// delivery wins the insert, any redelivery short-circuits as already processed.
type WebhookEvent struct {
	ID              int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ProviderEventID string        `gorm:"unique;not null;size:255;index" json:"provider_event_id"`
	EventType       string        `gorm:"not null;size:100;index" json:"event_type"`
	Status          WebhookStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Payload         JSONB         `gorm:"type:jsonb;not null" json:"payload"`
	LastError       *string       `json:"last_error,omitempty"`
	ReceivedAt      time.Time     `gorm:"default:now()" json:"received_at"`
	ProcessedAt     *time.Time    `json:"processed_at,omitempty"`
	ProviderCreated *time.Time    `json:"provider_created,omitempty"`
}

// TableName specifies the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
