package model

import (
	"time"

	"github.com/google/uuid"
)

// CreatorChannel stores a creator's linked YouTube channel and its OAuth tokens.
// Tokens are provisioned out-of-band; the service only keeps them fresh.
type CreatorChannel struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;unique;not null" json:"user_id"`
	ChannelID      string    `gorm:"not null;size:100" json:"channel_id"`
	ChannelTitle   string    `gorm:"size:200" json:"channel_title"`
	AccessToken    string    `gorm:"not null;size:2048" json:"-"`
	RefreshToken   string    `gorm:"not null;size:2048" json:"-"`
	TokenExpiresAt time.Time `gorm:"not null" json:"token_expires_at"`
	CreatedAt      time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (CreatorChannel) TableName() string {
	return "creator_channels"
}
