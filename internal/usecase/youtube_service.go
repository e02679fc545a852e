package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/clipmarket/clipmarket/internal/domain/model"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
)

// googleTokenURL is the OAuth token endpoint used to refresh YouTube credentials.
const googleTokenURL = "https://oauth2.googleapis.com/token"

// tokenRefreshSkew refreshes tokens slightly before they expire so callers
// never receive a token about to lapse mid-request.
const tokenRefreshSkew = 5 * time.Minute

// YouTubeService keeps creator channel OAuth tokens fresh. Tokens are
// provisioned out-of-band; this service never handles authorization redirects.
type YouTubeService struct {
	channelRepo domainRepo.ChannelRepository
	oauthConfig *oauth2.Config
	logger      *zap.Logger
}

// NewYouTubeService creates a new YouTube channel service
func NewYouTubeService(channelRepo domainRepo.ChannelRepository, clientID, clientSecret string, logger *zap.Logger) *YouTubeService {
	return &YouTubeService{
		channelRepo: channelRepo,
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: googleTokenURL,
			},
		},
		logger: logger,
	}
}

// LinkChannel stores or replaces the creator's channel and tokens.
func (s *YouTubeService) LinkChannel(ctx context.Context, userID uuid.UUID, channelID, channelTitle, accessToken, refreshToken string, expiresAt time.Time) (*model.CreatorChannel, error) {
	channel := &model.CreatorChannel{
		UserID:         userID,
		ChannelID:      channelID,
		ChannelTitle:   channelTitle,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		TokenExpiresAt: expiresAt,
	}

	if err := s.channelRepo.Upsert(ctx, channel); err != nil {
		return nil, err
	}

	s.logger.Info("Creator channel linked",
		zap.String("user_id", userID.String()),
		zap.String("channel_id", channelID))

	return channel, nil
}

// GetChannel returns the creator's channel, refreshing the access token first
// when it is expired or about to expire.
func (s *YouTubeService) GetChannel(ctx context.Context, userID uuid.UUID) (*model.CreatorChannel, error) {
	channel, err := s.channelRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if time.Until(channel.TokenExpiresAt) > tokenRefreshSkew {
		return channel, nil
	}

	refreshed, err := s.refreshToken(ctx, channel)
	if err != nil {
		s.logger.Error("Failed to refresh channel token",
			zap.String("user_id", userID.String()),
			zap.String("channel_id", channel.ChannelID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to refresh channel token: %w", err)
	}

	return refreshed, nil
}

func (s *YouTubeService) refreshToken(ctx context.Context, channel *model.CreatorChannel) (*model.CreatorChannel, error) {
	source := s.oauthConfig.TokenSource(ctx, &oauth2.Token{
		RefreshToken: channel.RefreshToken,
	})

	token, err := source.Token()
	if err != nil {
		return nil, err
	}

	channel.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		channel.RefreshToken = token.RefreshToken
	}
	channel.TokenExpiresAt = token.Expiry

	if err := s.channelRepo.UpdateTokens(ctx, channel); err != nil {
		return nil, err
	}

	s.logger.Info("Channel token refreshed",
		zap.String("user_id", channel.UserID.String()),
		zap.String("channel_id", channel.ChannelID),
		zap.Time("expires_at", channel.TokenExpiresAt))

	return channel, nil
}
