package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
	"github.com/clipmarket/clipmarket/internal/middleware/auth"
	"github.com/clipmarket/clipmarket/internal/usecase"
)

// AdminHandler exposes user management and payout recording for admins.
type AdminHandler struct {
	logger   *zap.Logger
	userRepo domainRepo.UserRepository
	payouts  *usecase.PayoutService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	logger *zap.Logger,
	userRepo domainRepo.UserRepository,
	payouts *usecase.PayoutService,
) *AdminHandler {
	return &AdminHandler{
		logger:   logger,
		userRepo: userRepo,
		payouts:  payouts,
	}
}

// ListUsers returns every account, newest first.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	var params model.PaginationParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid pagination parameters"})
	}
	params.Validate()

	users, total, err := h.userRepo.List(c.Request().Context(), params)
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list users"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":       users,
		"pagination": model.NewPaginationMeta(params.Page, params.Limit, total),
	})
}

// DisableUser blocks an account from authenticated endpoints.
func (h *AdminHandler) DisableUser(c echo.Context) error {
	return h.setUserDisabled(c, true)
}

// EnableUser re-activates an account.
func (h *AdminHandler) EnableUser(c echo.Context) error {
	return h.setUserDisabled(c, false)
}

func (h *AdminHandler) setUserDisabled(c echo.Context, disabled bool) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user id"})
	}

	if err := h.userRepo.SetDisabled(c.Request().Context(), userID, disabled); err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update user"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  userID,
		"disabled": disabled,
	})
}

type RecordPayoutRequest struct {
	CreatorID string `json:"creator_id" validate:"required,uuid"`
	Amount    string `json:"amount" validate:"required"`
	Currency  string `json:"currency" validate:"required,len=3,uppercase"`
	Note      string `json:"note" validate:"max=500"`
}

// RecordPayout records a transfer to a creator and debits their balance.
func (h *AdminHandler) RecordPayout(c echo.Context) error {
	admin, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	var req RecordPayoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	creatorID, err := uuid.Parse(req.CreatorID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid creator id"})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid amount"})
	}

	payout, err := h.payouts.RecordPayout(c.Request().Context(), admin.UserID, creatorID, amount, req.Currency, req.Note)
	if err != nil {
		var insufficient *domainErrors.InsufficientBalanceError
		switch {
		case errors.Is(err, domainErrors.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		case errors.As(err, &insufficient):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Failed to record payout",
			zap.String("creator_id", creatorID.String()),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, payout)
}

// ListPayouts returns every recorded payout.
func (h *AdminHandler) ListPayouts(c echo.Context) error {
	var params model.PaginationParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid pagination parameters"})
	}
	params.Validate()

	payouts, total, err := h.payouts.ListPayouts(c.Request().Context(), params)
	if err != nil {
		h.logger.Error("Failed to list payouts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list payouts"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":       payouts,
		"pagination": model.NewPaginationMeta(params.Page, params.Limit, total),
	})
}
