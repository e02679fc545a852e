package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Video represents a purchasable video listing. The service stores object-storage
// keys only, never media bytes.
type Video struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatorID       uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_id"`
	Title           string    `gorm:"not null;size:200" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	PriceCents      int64     `gorm:"not null" json:"price_cents"`
	Currency        string    `gorm:"size:3;not null;default:'USD'" json:"currency"`
	StorageKey      string    `gorm:"not null;size:512" json:"storage_key"`
	DurationSeconds int       `gorm:"not null;default:0" json:"duration_seconds"`
	Published       bool      `gorm:"not null;default:false;index" json:"published"`

	// Aggregate counters, mutated only by settlement. Monotonically non-decreasing.
	PurchaseCount int             `gorm:"not null;default:0" json:"purchase_count"`
	TotalRevenue  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_revenue"`

	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`

	// Relations
	Creator *User `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

// TableName specifies the table name for GORM
func (Video) TableName() string {
	return "videos"
}
