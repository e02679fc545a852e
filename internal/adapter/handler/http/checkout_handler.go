package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	"github.com/clipmarket/clipmarket/internal/middleware/auth"
	"github.com/clipmarket/clipmarket/internal/usecase"
)

// CheckoutHandler exposes purchase initiation and ownership endpoints.
type CheckoutHandler struct {
	logger    *zap.Logger
	purchases *usecase.PurchaseUsecase
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(logger *zap.Logger, purchases *usecase.PurchaseUsecase) *CheckoutHandler {
	return &CheckoutHandler{
		logger:    logger,
		purchases: purchases,
	}
}

// CreateCheckout starts a payment for the video in the path.
func (h *CheckoutHandler) CreateCheckout(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid video id"})
	}

	result, err := h.purchases.InitiateCheckout(c.Request().Context(), user.UserID, videoID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrVideoNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		case errors.Is(err, domainErrors.ErrVideoNotPublished),
			errors.Is(err, domainErrors.ErrSelfPurchase),
			errors.Is(err, domainErrors.ErrAlreadyOwned):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Checkout failed",
			zap.String("user_id", user.UserID.String()),
			zap.String("video_id", videoID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to start checkout"})
	}

	return c.JSON(http.StatusCreated, result)
}

// GetAccess reports whether the caller may stream the video.
func (h *CheckoutHandler) GetAccess(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid video id"})
	}

	hasAccess, err := h.purchases.HasAccess(c.Request().Context(), user.UserID, videoID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrVideoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to check access"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"video_id": videoID,
		"access":   hasAccess,
	})
}

// ListPurchases returns the caller's completed purchases.
func (h *CheckoutHandler) ListPurchases(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	var params model.PaginationParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid pagination parameters"})
	}
	params.Validate()

	purchases, total, err := h.purchases.ListPurchases(c.Request().Context(), user.UserID, params)
	if err != nil {
		h.logger.Error("Failed to list purchases",
			zap.String("user_id", user.UserID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list purchases"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":       purchases,
		"pagination": model.NewPaginationMeta(params.Page, params.Limit, total),
	})
}
