package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/clipmarket/clipmarket/internal/domain/model"
)

type ChannelRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*model.CreatorChannel, error)
	Upsert(ctx context.Context, channel *model.CreatorChannel) error
	UpdateTokens(ctx context.Context, channel *model.CreatorChannel) error
}
