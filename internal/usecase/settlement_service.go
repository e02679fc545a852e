package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
	"github.com/clipmarket/clipmarket/internal/metrics"
)

// EventHandler applies one webhook event type.
type EventHandler func(ctx context.Context, event stripe.Event) error

// SettlementService converts payment-provider events into durable purchase and
// earnings records. Handlers are registered in a static table keyed by event
// type; unknown types are not an error, the receiver acknowledges them.
type SettlementService struct {
	settlementRepo domainRepo.SettlementRepository
	logger         *zap.Logger
	handlers       map[stripe.EventType]EventHandler
}

// NewSettlementService creates a settlement service with its event registry.
func NewSettlementService(settlementRepo domainRepo.SettlementRepository, logger *zap.Logger) *SettlementService {
	s := &SettlementService{
		settlementRepo: settlementRepo,
		logger:         logger,
	}

	s.handlers = map[stripe.EventType]EventHandler{
		stripe.EventTypePaymentIntentSucceeded:      s.handleSucceeded,
		stripe.EventTypePaymentIntentPaymentFailed:  s.handleFailed,
		stripe.EventTypePaymentIntentCanceled:       s.handleCanceled,
		stripe.EventTypePaymentIntentRequiresAction: s.handleRequiresAction,
	}

	return s
}

// Handles reports whether the service has a handler for the event type.
func (s *SettlementService) Handles(eventType stripe.EventType) bool {
	_, ok := s.handlers[eventType]
	return ok
}

// Apply dispatches the event to its registered handler.
func (s *SettlementService) Apply(ctx context.Context, event stripe.Event) error {
	handler, ok := s.handlers[event.Type]
	if !ok {
		s.logger.Info("Event type unhandled",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
		return nil
	}

	err := handler(ctx, event)
	metrics.ObserveSettlement(string(event.Type), err)
	return err
}

func (s *SettlementService) handleSucceeded(ctx context.Context, event stripe.Event) error {
	intent, err := parseIntent(event)
	if err != nil {
		return err
	}

	userID, videoID, err := settlementLinkage(intent)
	if err != nil {
		s.logger.Error("Succeeded payment cannot be settled, missing linkage",
			zap.String("event_id", event.ID),
			zap.String("payment_reference", intent.ID),
			zap.Error(err))
		return err
	}

	var chargeRef string
	if intent.LatestCharge != nil {
		chargeRef = intent.LatestCharge.ID
	}

	applied, err := s.settlementRepo.ApplySucceeded(ctx, domainRepo.SucceededSettlement{
		PaymentReference: intent.ID,
		ChargeReference:  chargeRef,
		UserID:           userID,
		VideoID:          videoID,
		AmountCents:      intent.Amount,
		Currency:         normalizeCurrency(string(intent.Currency)),
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrPaymentNotFound) {
			// A reference this service never issued. Redelivery cannot fix it,
			// so acknowledge and leave it to reconciliation.
			s.logger.Error("Succeeded event for unknown payment reference",
				zap.String("event_id", event.ID),
				zap.String("payment_reference", intent.ID))
			return domainErrors.ErrMissingMetadata
		}
		return fmt.Errorf("settlement failed: %w", err)
	}

	if applied {
		metrics.PurchasesCompleted.Inc()
	}

	return nil
}

func (s *SettlementService) handleFailed(ctx context.Context, event stripe.Event) error {
	intent, err := parseIntent(event)
	if err != nil {
		return err
	}

	var failureCode, failureMessage *string
	if intent.LastPaymentError != nil {
		if code := string(intent.LastPaymentError.Code); code != "" {
			failureCode = &code
		}
		if msg := intent.LastPaymentError.Msg; msg != "" {
			failureMessage = &msg
		}
	}

	return s.applyStatus(ctx, event, intent.ID, model.PaymentStatusFailed, failureCode, failureMessage)
}

func (s *SettlementService) handleCanceled(ctx context.Context, event stripe.Event) error {
	intent, err := parseIntent(event)
	if err != nil {
		return err
	}

	var reason *string
	if r := string(intent.CancellationReason); r != "" {
		reason = &r
	}

	return s.applyStatus(ctx, event, intent.ID, model.PaymentStatusCanceled, nil, reason)
}

func (s *SettlementService) handleRequiresAction(ctx context.Context, event stripe.Event) error {
	intent, err := parseIntent(event)
	if err != nil {
		return err
	}

	return s.applyStatus(ctx, event, intent.ID, model.PaymentStatusRequiresAction, nil, nil)
}

func (s *SettlementService) applyStatus(ctx context.Context, event stripe.Event, reference string, status model.PaymentStatus, failureCode, failureMessage *string) error {
	err := s.settlementRepo.ApplyStatus(ctx, reference, status, failureCode, failureMessage)
	if err != nil {
		if errors.Is(err, domainErrors.ErrPaymentNotFound) {
			s.logger.Error("Status event for unknown payment reference",
				zap.String("event_id", event.ID),
				zap.String("payment_reference", reference),
				zap.String("status", string(status)))
			return domainErrors.ErrMissingMetadata
		}
		return fmt.Errorf("failed to apply payment status: %w", err)
	}
	return nil
}

// parseIntent extracts the payment intent object from the event envelope.
func parseIntent(event stripe.Event) (*stripe.PaymentIntent, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrMalformedEvent, err)
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("%w: payment intent id missing", domainErrors.ErrMalformedEvent)
	}
	return &intent, nil
}

// settlementLinkage resolves the user and video a payment belongs to from the
// intent metadata stamped at checkout time.
func settlementLinkage(intent *stripe.PaymentIntent) (uuid.UUID, uuid.UUID, error) {
	rawUser := intent.Metadata["user_id"]
	rawVideo := intent.Metadata["video_id"]
	if rawUser == "" || rawVideo == "" {
		return uuid.Nil, uuid.Nil, domainErrors.ErrMissingMetadata
	}

	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: invalid user_id", domainErrors.ErrMissingMetadata)
	}

	videoID, err := uuid.Parse(rawVideo)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: invalid video_id", domainErrors.ErrMissingMetadata)
	}

	return userID, videoID, nil
}

func normalizeCurrency(currency string) string {
	if currency == "" {
		return "USD"
	}
	return strings.ToUpper(currency)
}
