package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	"github.com/clipmarket/clipmarket/internal/usecase"
)

// MockChannelRepository is a mock implementation of ChannelRepository
type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.CreatorChannel, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CreatorChannel), args.Error(1)
}

func (m *MockChannelRepository) Upsert(ctx context.Context, channel *model.CreatorChannel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockChannelRepository) UpdateTokens(ctx context.Context, channel *model.CreatorChannel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func TestYouTubeService_LinkChannel(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	expiresAt := time.Now().Add(time.Hour)

	channelRepo := new(MockChannelRepository)
	service := usecase.NewYouTubeService(channelRepo, "client-id", "client-secret", zap.NewNop())

	channelRepo.On("Upsert", ctx, mock.MatchedBy(func(ch *model.CreatorChannel) bool {
		return ch.UserID == userID &&
			ch.ChannelID == "UCabc123" &&
			ch.AccessToken == "access" &&
			ch.RefreshToken == "refresh"
	})).Return(nil)

	channel, err := service.LinkChannel(ctx, userID, "UCabc123", "My Channel", "access", "refresh", expiresAt)

	assert.NoError(t, err)
	assert.Equal(t, "My Channel", channel.ChannelTitle)
	channelRepo.AssertExpectations(t)
}

func TestYouTubeService_GetChannel(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("fresh token is returned as is", func(t *testing.T) {
		channelRepo := new(MockChannelRepository)
		service := usecase.NewYouTubeService(channelRepo, "client-id", "client-secret", zap.NewNop())

		channelRepo.On("GetByUser", ctx, userID).Return(&model.CreatorChannel{
			UserID:         userID,
			ChannelID:      "UCabc123",
			AccessToken:    "still-valid",
			TokenExpiresAt: time.Now().Add(time.Hour),
		}, nil)

		channel, err := service.GetChannel(ctx, userID)

		assert.NoError(t, err)
		assert.Equal(t, "still-valid", channel.AccessToken)
		channelRepo.AssertNotCalled(t, "UpdateTokens")
	})

	t.Run("unknown channel", func(t *testing.T) {
		channelRepo := new(MockChannelRepository)
		service := usecase.NewYouTubeService(channelRepo, "client-id", "client-secret", zap.NewNop())

		channelRepo.On("GetByUser", ctx, userID).Return(nil, domainErrors.ErrChannelNotFound)

		_, err := service.GetChannel(ctx, userID)

		assert.ErrorIs(t, err, domainErrors.ErrChannelNotFound)
	})
}
