package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
	"github.com/clipmarket/clipmarket/internal/middleware/auth"
)

// UserHandler exposes the authenticated user's profile and spend counters.
type UserHandler struct {
	logger   *zap.Logger
	userRepo domainRepo.UserRepository
}

// NewUserHandler creates a new user handler
func NewUserHandler(logger *zap.Logger, userRepo domainRepo.UserRepository) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userRepo: userRepo,
	}
}

// GetMe returns the caller's profile.
func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	profile, err := h.userRepo.GetByID(c.Request().Context(), user.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Failed to load profile",
			zap.String("user_id", user.UserID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load profile"})
	}

	return c.JSON(http.StatusOK, profile)
}

// GetMyStats returns the caller's settlement-maintained counters.
func (h *UserHandler) GetMyStats(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	profile, err := h.userRepo.GetByID(c.Request().Context(), user.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load stats"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_spent":    profile.TotalSpent,
		"purchase_count": profile.PurchaseCount,
	})
}
