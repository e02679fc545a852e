package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/clipmarket/clipmarket/internal/domain/model"
)

type PayoutRepository interface {
	// Record inserts the payout and debits the creator's pending balance in one
	// transaction. Fails with InsufficientBalanceError when the balance does not
	// cover the amount.
	Record(ctx context.Context, payout *model.Payout) error
	List(ctx context.Context, params model.PaginationParams) ([]*model.Payout, int64, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, params model.PaginationParams) ([]*model.Payout, int64, error)
}
