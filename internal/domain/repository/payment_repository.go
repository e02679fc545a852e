package repository

import (
	"context"

	"github.com/clipmarket/clipmarket/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, record *model.PaymentRecord) error
}
