package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/clipmarket/clipmarket/internal/domain/model"
)

type VideoRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error)
	Create(ctx context.Context, video *model.Video) error
	Update(ctx context.Context, video *model.Video) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetPublished(ctx context.Context, id uuid.UUID, published bool) error
	ListPublished(ctx context.Context, params model.PaginationParams) ([]*model.Video, int64, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, params model.PaginationParams) ([]*model.Video, int64, error)
}
