package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/clipmarket/clipmarket/internal/domain/model"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error
	List(ctx context.Context, params model.PaginationParams) ([]*model.User, int64, error)
}
