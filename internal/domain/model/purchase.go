package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseStatus represents the status of a purchase
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusFailed    PurchaseStatus = "failed"
)

// Scan implements sql.Scanner interface
func (s *PurchaseStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = PurchaseStatus(v)
	case []byte:
		*s = PurchaseStatus(v)
	default:
		*s = PurchaseStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s PurchaseStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Purchase represents a viewer's access right to a single video. Rows are created
// exactly once, at the moment a payment first reaches succeeded, and never mutated
// afterward. A unique index on (user_id, video_id, payment_reference) backs the
// settlement existence check.
type Purchase struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_purchase_settlement;index" json:"user_id"`
	VideoID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_purchase_settlement;index" json:"video_id"`
	PaymentReference string          `gorm:"not null;size:100;uniqueIndex:idx_purchase_settlement" json:"payment_reference"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency         string          `gorm:"size:3;not null" json:"currency"`
	Status           PurchaseStatus  `gorm:"size:20;not null" json:"status"`
	PurchasedAt      time.Time       `gorm:"not null" json:"purchased_at"`

	// Relations
	Video *Video `gorm:"foreignKey:VideoID" json:"video,omitempty"`
}

// TableName specifies the table name for GORM
func (Purchase) TableName() string {
	return "purchases"
}
