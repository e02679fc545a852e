package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clipmarket/clipmarket/internal/domain/model"
)

// SucceededSettlement carries everything needed to settle one succeeded payment.
type SucceededSettlement struct {
	PaymentReference string
	ChargeReference  string
	UserID           uuid.UUID
	VideoID          uuid.UUID
	AmountCents      int64
	Currency         string
}

// Amount returns the settlement amount in major units, exact to two decimal places.
func (s SucceededSettlement) Amount() decimal.Decimal {
	return decimal.New(s.AmountCents, -2)
}

// SettlementRepository performs the transactional mutations behind payment
// settlement. All cross-row writes for one settlement happen inside a single
// database transaction.
type SettlementRepository interface {
	// ApplySucceeded atomically marks the payment record succeeded, inserts a
	// completed purchase (unless one already exists for the same user/video/
	// reference triple), and bumps the video, buyer and creator aggregates.
	// Re-applying the same settlement is a no-op: applied reports whether this
	// call performed the mutations.
	ApplySucceeded(ctx context.Context, s SucceededSettlement) (applied bool, err error)

	// ApplyStatus moves the payment record to a non-success state with optional
	// failure details. Transitions out of a terminal state are silently skipped.
	ApplyStatus(ctx context.Context, reference string, status model.PaymentStatus, failureCode, failureMessage *string) error
}
