package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
)

type userRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, logger *zap.Logger) domainRepo.UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrUserNotFound
		}
		r.logger.Error("Failed to get user",
			zap.String("user_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("disabled", disabled)

	if result.Error != nil {
		r.logger.Error("Failed to change user disabled flag",
			zap.String("user_id", id.String()),
			zap.Bool("disabled", disabled),
			zap.Error(result.Error))
		return fmt.Errorf("failed to change user disabled flag: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domainErrors.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) List(ctx context.Context, params model.PaginationParams) ([]*model.User, int64, error) {
	params.Validate()

	var users []*model.User
	var total int64

	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.CalculateOffset()).
		Find(&users).Error

	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}
