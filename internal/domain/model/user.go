package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRole represents the role of a user account
type UserRole string

const (
	RoleViewer  UserRole = "viewer"
	RoleCreator UserRole = "creator"
	RoleAdmin   UserRole = "admin"
)

// Scan implements sql.Scanner interface
func (r *UserRole) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*r = UserRole(v)
	case []byte:
		*r = UserRole(v)
	default:
		*r = RoleViewer
	}
	return nil
}

// Value implements driver.Valuer interface
func (r UserRole) Value() (driver.Value, error) {
	return string(r), nil
}

// User represents a marketplace account (viewer, creator or admin)
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email       string    `gorm:"unique;not null;size:255" json:"email"`
	DisplayName string    `gorm:"size:100" json:"display_name"`
	Role        UserRole  `gorm:"size:20;not null;default:'viewer'" json:"role"`
	Disabled    bool      `gorm:"not null;default:false" json:"disabled"`

	// Spend counters, mutated only by settlement. Monotonically non-decreasing.
	TotalSpent    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_spent"`
	PurchaseCount int             `gorm:"not null;default:0" json:"purchase_count"`

	// Creator earnings awaiting payout, credited by settlement and debited by payouts.
	PendingBalance decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"pending_balance"`

	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
