package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/clipmarket/clipmarket/internal/adapter/repository"
	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/metrics"
	"github.com/clipmarket/clipmarket/internal/usecase"
)

// WebhookResponse is the envelope returned for every webhook delivery.
type WebhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WebhookHandler receives signed payment-provider events, deduplicates them by
// provider event id and hands them to the settlement service. Each delivery is
// isolated: a failure in one never affects another.
type WebhookHandler struct {
	logger        *zap.Logger
	webhookSecret string
	webhookRepo   repository.WebhookRepository
	settlement    *usecase.SettlementService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(
	logger *zap.Logger,
	webhookSecret string,
	webhookRepo repository.WebhookRepository,
	settlement *usecase.SettlementService,
) *WebhookHandler {
	return &WebhookHandler{
		logger:        logger,
		webhookSecret: webhookSecret,
		webhookRepo:   webhookRepo,
		settlement:    settlement,
	}
}

// HandleWebhook processes one webhook delivery. Non-2xx responses make the
// provider redeliver, which is safe because settlement is idempotent.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Failed to read webhook body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, WebhookResponse{
			Status:  "error",
			Message: "failed to read request body",
		})
	}

	sig := c.Request().Header.Get("Stripe-Signature")

	event, err := webhook.ConstructEventWithOptions(
		body,
		sig,
		h.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		// Payload is untrusted at this point, log the failure only.
		h.logger.Warn("Webhook signature verification failed", zap.Error(err))
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "rejected_signature").Inc()
		return c.JSON(http.StatusBadRequest, WebhookResponse{
			Status:  "error",
			Message: domainErrors.ErrInvalidSignature.Error(),
		})
	}

	if event.ID == "" || event.Type == "" {
		h.logger.Warn("Webhook event missing id or type")
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "malformed").Inc()
		return c.JSON(http.StatusBadRequest, WebhookResponse{
			Status:  "error",
			Message: domainErrors.ErrMalformedEvent.Error(),
		})
	}

	ctx := c.Request().Context()
	eventType := string(event.Type)

	h.logger.Info("Webhook event received",
		zap.String("event_id", event.ID),
		zap.String("event_type", eventType))

	// First safety net against duplicate settlement: the unique constraint on
	// the provider event id. A redelivery observes the existing row and stops.
	inserted, err := h.webhookRepo.SaveEvent(ctx, event.ID, eventType, event.Data.Raw)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "storage_error").Inc()
		return c.JSON(http.StatusBadRequest, WebhookResponse{
			Status:  "error",
			Message: "failed to record event",
		})
	}
	if !inserted {
		h.logger.Info("Webhook event already processed",
			zap.String("event_id", event.ID),
			zap.String("event_type", eventType))
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "duplicate").Inc()
		return c.JSON(http.StatusOK, WebhookResponse{
			Status:  "success",
			Message: "event already processed",
		})
	}

	if !h.settlement.Handles(event.Type) {
		if err := h.webhookRepo.MarkProcessed(ctx, event.ID); err != nil {
			h.logger.Error("Failed to mark unhandled event processed",
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "unhandled_type").Inc()
		return c.JSON(http.StatusOK, WebhookResponse{
			Status:  "success",
			Message: "event type unhandled",
		})
	}

	if err := h.settlement.Apply(ctx, event); err != nil {
		if markErr := h.webhookRepo.MarkFailed(ctx, event.ID, err); markErr != nil {
			h.logger.Error("Failed to mark event failed",
				zap.String("event_id", event.ID),
				zap.Error(markErr))
		}

		if errors.Is(err, domainErrors.ErrMissingMetadata) {
			// Redelivery cannot supply the missing linkage; acknowledge so the
			// provider stops retrying and leave the row for reconciliation.
			metrics.WebhookEventsTotal.WithLabelValues(eventType, "acknowledged_unapplied").Inc()
			return c.JSON(http.StatusOK, WebhookResponse{
				Status:  "success",
				Message: "event acknowledged but not applied",
			})
		}

		if errors.Is(err, domainErrors.ErrMalformedEvent) {
			metrics.WebhookEventsTotal.WithLabelValues(eventType, "malformed").Inc()
			return c.JSON(http.StatusBadRequest, WebhookResponse{
				Status:  "error",
				Message: domainErrors.ErrMalformedEvent.Error(),
			})
		}

		h.logger.Error("Webhook event processing failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", eventType),
			zap.Error(err))
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "failed").Inc()
		return c.JSON(http.StatusBadRequest, WebhookResponse{
			Status:  "error",
			Message: "event processing failed",
		})
	}

	if err := h.webhookRepo.MarkProcessed(ctx, event.ID); err != nil {
		h.logger.Error("Failed to mark event processed",
			zap.String("event_id", event.ID),
			zap.Error(err))
	}

	metrics.WebhookEventsTotal.WithLabelValues(eventType, "applied").Inc()
	return c.JSON(http.StatusOK, WebhookResponse{
		Status:  "success",
		Message: "event processed",
	})
}
