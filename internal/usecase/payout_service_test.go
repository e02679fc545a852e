package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	"github.com/clipmarket/clipmarket/internal/usecase"
)

// MockPayoutRepository is a mock implementation of PayoutRepository
type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) Record(ctx context.Context, payout *model.Payout) error {
	args := m.Called(ctx, payout)
	return args.Error(0)
}

func (m *MockPayoutRepository) List(ctx context.Context, params model.PaginationParams) ([]*model.Payout, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*model.Payout), args.Get(1).(int64), args.Error(2)
}

func (m *MockPayoutRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, params model.PaginationParams) ([]*model.Payout, int64, error) {
	args := m.Called(ctx, creatorID, params)
	return args.Get(0).([]*model.Payout), args.Get(1).(int64), args.Error(2)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	args := m.Called(ctx, id, disabled)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, params model.PaginationParams) ([]*model.User, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*model.User), args.Get(1).(int64), args.Error(2)
}

func TestPayoutService_RecordPayout(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	adminID := uuid.New()
	creatorID := uuid.New()

	creator := func(balance string) *model.User {
		return &model.User{
			ID:             creatorID,
			Role:           model.RoleCreator,
			PendingBalance: decimal.RequireFromString(balance),
		}
	}

	t.Run("records a payout for a creator", func(t *testing.T) {
		payoutRepo := new(MockPayoutRepository)
		userRepo := new(MockUserRepository)
		service := usecase.NewPayoutService(payoutRepo, userRepo, new(MockVideoRepository), logger)

		userRepo.On("GetByID", ctx, creatorID).Return(creator("120.50"), nil)
		payoutRepo.On("Record", ctx, mock.MatchedBy(func(p *model.Payout) bool {
			return p.CreatorID == creatorID &&
				p.CreatedBy == adminID &&
				p.Amount.Equal(decimal.RequireFromString("100.00")) &&
				p.Currency == "USD"
		})).Return(nil)

		payout, err := service.RecordPayout(ctx, adminID, creatorID, decimal.RequireFromString("100.00"), "USD", "July payout")

		assert.NoError(t, err)
		assert.Equal(t, "July payout", payout.Note)
		payoutRepo.AssertExpectations(t)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		payoutRepo := new(MockPayoutRepository)
		service := usecase.NewPayoutService(payoutRepo, new(MockUserRepository), new(MockVideoRepository), logger)

		_, err := service.RecordPayout(ctx, adminID, creatorID, decimal.Zero, "USD", "")
		assert.Error(t, err)

		_, err = service.RecordPayout(ctx, adminID, creatorID, decimal.RequireFromString("-5"), "USD", "")
		assert.Error(t, err)

		payoutRepo.AssertNotCalled(t, "Record")
	})

	t.Run("rejects payouts to non-creators", func(t *testing.T) {
		payoutRepo := new(MockPayoutRepository)
		userRepo := new(MockUserRepository)
		service := usecase.NewPayoutService(payoutRepo, userRepo, new(MockVideoRepository), logger)

		viewer := creator("50")
		viewer.Role = model.RoleViewer
		userRepo.On("GetByID", ctx, creatorID).Return(viewer, nil)

		_, err := service.RecordPayout(ctx, adminID, creatorID, decimal.RequireFromString("10"), "USD", "")

		assert.Error(t, err)
		payoutRepo.AssertNotCalled(t, "Record")
	})

	t.Run("insufficient balance surfaces from the repository", func(t *testing.T) {
		payoutRepo := new(MockPayoutRepository)
		userRepo := new(MockUserRepository)
		service := usecase.NewPayoutService(payoutRepo, userRepo, new(MockVideoRepository), logger)

		userRepo.On("GetByID", ctx, creatorID).Return(creator("30"), nil)
		payoutRepo.On("Record", ctx, mock.Anything).Return(&domainErrors.InsufficientBalanceError{
			Requested: decimal.RequireFromString("100"),
			Available: decimal.RequireFromString("30"),
		})

		_, err := service.RecordPayout(ctx, adminID, creatorID, decimal.RequireFromString("100"), "USD", "")

		var insufficient *domainErrors.InsufficientBalanceError
		assert.ErrorAs(t, err, &insufficient)
		assert.True(t, insufficient.Available.Equal(decimal.RequireFromString("30")))
	})

	t.Run("unknown creator", func(t *testing.T) {
		payoutRepo := new(MockPayoutRepository)
		userRepo := new(MockUserRepository)
		service := usecase.NewPayoutService(payoutRepo, userRepo, new(MockVideoRepository), logger)

		userRepo.On("GetByID", ctx, creatorID).Return(nil, domainErrors.ErrUserNotFound)

		_, err := service.RecordPayout(ctx, adminID, creatorID, decimal.RequireFromString("10"), "USD", "")

		assert.ErrorIs(t, err, domainErrors.ErrUserNotFound)
	})
}

func TestPayoutService_CreatorEarnings(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	creatorID := uuid.New()

	payoutRepo := new(MockPayoutRepository)
	userRepo := new(MockUserRepository)
	videoRepo := new(MockVideoRepository)
	service := usecase.NewPayoutService(payoutRepo, userRepo, videoRepo, logger)

	userRepo.On("GetByID", ctx, creatorID).Return(&model.User{
		ID:             creatorID,
		Role:           model.RoleCreator,
		PendingBalance: decimal.RequireFromString("45.10"),
	}, nil)

	videoRepo.On("ListByCreator", ctx, creatorID, mock.Anything).Return([]*model.Video{
		{TotalRevenue: decimal.RequireFromString("120.25")},
		{TotalRevenue: decimal.RequireFromString("0.05")},
		{TotalRevenue: decimal.Zero},
	}, int64(3), nil)

	payoutRepo.On("ListByCreator", ctx, creatorID, mock.Anything).Return([]*model.Payout{
		{Amount: decimal.RequireFromString("75.20")},
	}, int64(1), nil)

	summary, err := service.CreatorEarnings(ctx, creatorID)

	assert.NoError(t, err)
	assert.True(t, summary.PendingBalance.Equal(decimal.RequireFromString("45.10")))
	assert.True(t, summary.TotalRevenue.Equal(decimal.RequireFromString("120.30")))
	assert.Len(t, summary.Payouts, 1)
}
