package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/middleware/auth"
	"github.com/clipmarket/clipmarket/internal/usecase"
)

// CreatorHandler serves creator earnings and channel linkage.
type CreatorHandler struct {
	logger  *zap.Logger
	payouts *usecase.PayoutService
	youtube *usecase.YouTubeService
}

// NewCreatorHandler creates a new creator handler
func NewCreatorHandler(logger *zap.Logger, payouts *usecase.PayoutService, youtube *usecase.YouTubeService) *CreatorHandler {
	return &CreatorHandler{
		logger:  logger,
		payouts: payouts,
		youtube: youtube,
	}
}

// GetEarnings returns the caller's accrued revenue, pending balance and
// recent payouts.
func (h *CreatorHandler) GetEarnings(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	summary, err := h.payouts.CreatorEarnings(c.Request().Context(), user.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Failed to load creator earnings",
			zap.String("user_id", user.UserID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load earnings"})
	}

	return c.JSON(http.StatusOK, summary)
}

type LinkChannelRequest struct {
	ChannelID      string `json:"channel_id" validate:"required"`
	ChannelTitle   string `json:"channel_title" validate:"required,max=200"`
	AccessToken    string `json:"access_token" validate:"required"`
	RefreshToken   string `json:"refresh_token" validate:"required"`
	TokenExpiresAt string `json:"token_expires_at" validate:"required"`
}

// LinkChannel stores or replaces the caller's YouTube channel credentials.
func (h *CreatorHandler) LinkChannel(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	var req LinkChannelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	expiresAt, err := time.Parse(time.RFC3339, req.TokenExpiresAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token_expires_at must be RFC 3339"})
	}

	channel, err := h.youtube.LinkChannel(c.Request().Context(), user.UserID,
		req.ChannelID, req.ChannelTitle, req.AccessToken, req.RefreshToken, expiresAt)
	if err != nil {
		h.logger.Error("Failed to link channel",
			zap.String("user_id", user.UserID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to link channel"})
	}

	return c.JSON(http.StatusCreated, channel)
}

// GetChannel returns the caller's linked channel with a fresh access token.
func (h *CreatorHandler) GetChannel(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	channel, err := h.youtube.GetChannel(c.Request().Context(), user.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrChannelNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Failed to load channel",
			zap.String("user_id", user.UserID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load channel"})
	}

	return c.JSON(http.StatusOK, channel)
}
