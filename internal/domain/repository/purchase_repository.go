package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/clipmarket/clipmarket/internal/domain/model"
)

type PurchaseRepository interface {
	// HasCompleted reports whether the user holds any completed purchase of the video,
	// regardless of payment reference.
	HasCompleted(ctx context.Context, userID, videoID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params model.PaginationParams) ([]*model.Purchase, int64, error)
}
