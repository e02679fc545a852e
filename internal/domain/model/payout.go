package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payout represents an admin-recorded transfer of accrued earnings to a creator.
type Payout struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatorID uuid.UUID       `gorm:"type:uuid;not null;index" json:"creator_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Currency  string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Note      string          `gorm:"size:500" json:"note"`
	CreatedBy uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time       `gorm:"default:now()" json:"created_at"`

	// Relations
	Creator *User `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

// TableName specifies the table name for GORM
func (Payout) TableName() string {
	return "payouts"
}
