package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the lifecycle state of a payment record
type PaymentStatus string

const (
	PaymentStatusCreated        PaymentStatus = "created"
	PaymentStatusSucceeded      PaymentStatus = "succeeded"
	PaymentStatusFailed         PaymentStatus = "failed"
	PaymentStatusCanceled       PaymentStatus = "canceled"
	PaymentStatusRequiresAction PaymentStatus = "requires_action"
)

// Scan implements sql.Scanner interface
func (s *PaymentStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = PaymentStatus(v)
	case []byte:
		*s = PaymentStatus(v)
	default:
		*s = PaymentStatusCreated
	}
	return nil
}

// Value implements driver.Valuer interface
func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// IsTerminal reports whether no further transitions are permitted from this status.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCanceled:
		return true
	}
	return false
}

// PaymentRecord tracks a single payment intent from creation through its terminal
// state. Status transitions happen exclusively via webhook events:
//
//	created --> succeeded | failed | canceled | requires_action
//	requires_action --> succeeded | failed
//
// Terminal states (succeeded, failed, canceled) never reverse.
type PaymentRecord struct {
	ID               int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentReference string        `gorm:"unique;not null;size:100" json:"payment_reference"`
	UserID           uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	VideoID          uuid.UUID     `gorm:"type:uuid;not null;index" json:"video_id"`
	AmountCents      int64         `gorm:"not null" json:"amount_cents"`
	Currency         string        `gorm:"size:3;not null" json:"currency"`
	Status           PaymentStatus `gorm:"size:20;not null;default:'created';index" json:"status"`
	ChargeReference  *string       `gorm:"size:100" json:"charge_reference,omitempty"`
	FailureCode      *string       `gorm:"size:100" json:"failure_code,omitempty"`
	FailureMessage   *string       `json:"failure_message,omitempty"`
	PaidAt           *time.Time    `json:"paid_at,omitempty"`
	CreatedAt        time.Time     `gorm:"default:now()" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PaymentRecord) TableName() string {
	return "payment_records"
}
