package errors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InsufficientBalanceError is returned when a payout exceeds the creator's
// accrued pending balance
type InsufficientBalanceError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient pending balance: requested %s, available %s", e.Requested.String(), e.Available.String())
}

// NewInsufficientBalanceError creates a new InsufficientBalanceError
func NewInsufficientBalanceError(requested, available decimal.Decimal) *InsufficientBalanceError {
	return &InsufficientBalanceError{
		Requested: requested,
		Available: available,
	}
}
