package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clipmarket/clipmarket/internal/domain/model"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
)

// EarningsSummary reports a creator's accrued earnings and payout history.
type EarningsSummary struct {
	PendingBalance decimal.Decimal `json:"pending_balance"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	Payouts        []*model.Payout `json:"payouts"`
}

// PayoutService handles creator earnings and admin-recorded payouts.
type PayoutService struct {
	payoutRepo domainRepo.PayoutRepository
	userRepo   domainRepo.UserRepository
	videoRepo  domainRepo.VideoRepository
	logger     *zap.Logger
}

// NewPayoutService creates a new payout service
func NewPayoutService(
	payoutRepo domainRepo.PayoutRepository,
	userRepo domainRepo.UserRepository,
	videoRepo domainRepo.VideoRepository,
	logger *zap.Logger,
) *PayoutService {
	return &PayoutService{
		payoutRepo: payoutRepo,
		userRepo:   userRepo,
		videoRepo:  videoRepo,
		logger:     logger,
	}
}

// RecordPayout records a transfer to a creator and debits their pending balance.
func (s *PayoutService) RecordPayout(ctx context.Context, adminID, creatorID uuid.UUID, amount decimal.Decimal, currency, note string) (*model.Payout, error) {
	if !amount.IsPositive() {
		return nil, errors.New("payout amount must be positive")
	}

	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator.Role != model.RoleCreator {
		return nil, errors.New("payouts can only be recorded for creators")
	}

	payout := &model.Payout{
		CreatorID: creatorID,
		Amount:    amount,
		Currency:  currency,
		Note:      note,
		CreatedBy: adminID,
	}

	if err := s.payoutRepo.Record(ctx, payout); err != nil {
		return nil, err
	}

	return payout, nil
}

// CreatorEarnings summarizes what a creator has earned and been paid.
func (s *PayoutService) CreatorEarnings(ctx context.Context, creatorID uuid.UUID) (*EarningsSummary, error) {
	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	videos, _, err := s.videoRepo.ListByCreator(ctx, creatorID, model.PaginationParams{Page: 1, Limit: model.MaxPageSize})
	if err != nil {
		return nil, err
	}

	totalRevenue := decimal.Zero
	for _, v := range videos {
		totalRevenue = totalRevenue.Add(v.TotalRevenue)
	}

	payouts, _, err := s.payoutRepo.ListByCreator(ctx, creatorID, model.PaginationParams{Page: 1, Limit: model.DefaultPageSize})
	if err != nil {
		return nil, err
	}

	return &EarningsSummary{
		PendingBalance: creator.PendingBalance,
		TotalRevenue:   totalRevenue,
		Payouts:        payouts,
	}, nil
}

// ListPayouts returns all recorded payouts, newest first.
func (s *PayoutService) ListPayouts(ctx context.Context, params model.PaginationParams) ([]*model.Payout, int64, error) {
	return s.payoutRepo.List(ctx, params)
}
