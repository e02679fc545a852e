package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
	"github.com/clipmarket/clipmarket/internal/infrastructure/crypto"
)

// channelRepository stores creator channels. OAuth tokens are sealed before
// they touch the database and opened on the way out; callers only ever see
// plaintext tokens.
type channelRepository struct {
	db     *gorm.DB
	cipher crypto.TokenCipher
	logger *zap.Logger
}

// NewChannelRepository creates a new creator channel repository
func NewChannelRepository(db *gorm.DB, cipher crypto.TokenCipher, logger *zap.Logger) domainRepo.ChannelRepository {
	return &channelRepository{
		db:     db,
		cipher: cipher,
		logger: logger,
	}
}

func (r *channelRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.CreatorChannel, error) {
	var channel model.CreatorChannel

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&channel).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrChannelNotFound
		}
		r.logger.Error("Failed to get creator channel",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get creator channel: %w", err)
	}

	if err := r.openTokens(&channel); err != nil {
		r.logger.Error("Failed to decrypt channel tokens",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to decrypt channel tokens: %w", err)
	}

	return &channel, nil
}

func (r *channelRepository) Upsert(ctx context.Context, channel *model.CreatorChannel) error {
	sealedAccess, sealedRefresh, err := r.sealTokens(channel)
	if err != nil {
		return fmt.Errorf("failed to encrypt channel tokens: %w", err)
	}

	stored := *channel
	stored.AccessToken = sealedAccess
	stored.RefreshToken = sealedRefresh

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"channel_id", "channel_title", "access_token",
				"refresh_token", "token_expires_at", "updated_at",
			}),
		}).
		Create(&stored).Error

	if err != nil {
		r.logger.Error("Failed to upsert creator channel",
			zap.String("user_id", channel.UserID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to upsert creator channel: %w", err)
	}

	channel.ID = stored.ID
	channel.CreatedAt = stored.CreatedAt
	channel.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *channelRepository) UpdateTokens(ctx context.Context, channel *model.CreatorChannel) error {
	sealedAccess, sealedRefresh, err := r.sealTokens(channel)
	if err != nil {
		return fmt.Errorf("failed to encrypt channel tokens: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&model.CreatorChannel{}).
		Where("user_id = ?", channel.UserID).
		Updates(map[string]interface{}{
			"access_token":     sealedAccess,
			"refresh_token":    sealedRefresh,
			"token_expires_at": channel.TokenExpiresAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update channel tokens",
			zap.String("user_id", channel.UserID.String()),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update channel tokens: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domainErrors.ErrChannelNotFound
	}

	return nil
}

func (r *channelRepository) sealTokens(channel *model.CreatorChannel) (access, refresh string, err error) {
	access, err = r.cipher.Seal(channel.AccessToken)
	if err != nil {
		return "", "", err
	}
	refresh, err = r.cipher.Seal(channel.RefreshToken)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (r *channelRepository) openTokens(channel *model.CreatorChannel) error {
	access, err := r.cipher.Open(channel.AccessToken)
	if err != nil {
		return err
	}
	refresh, err := r.cipher.Open(channel.RefreshToken)
	if err != nil {
		return err
	}
	channel.AccessToken = access
	channel.RefreshToken = refresh
	return nil
}
