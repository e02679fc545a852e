package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"go.uber.org/zap"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
)

// IntentClient creates payment intents with the payment provider.
type IntentClient interface {
	Create(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeIntentClient struct{}

func (stripeIntentClient) Create(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.New(params)
}

// NewStripeIntentClient returns an IntentClient backed by the Stripe API.
func NewStripeIntentClient() IntentClient {
	return stripeIntentClient{}
}

// CheckoutResult is returned to the client so it can confirm the payment.
type CheckoutResult struct {
	PaymentReference string `json:"payment_reference"`
	ClientSecret     string `json:"client_secret"`
	AmountCents      int64  `json:"amount_cents"`
	Currency         string `json:"currency"`
}

// PurchaseUsecase handles purchase initiation and access checks. Settlement of
// the resulting payment happens exclusively through the webhook path.
type PurchaseUsecase struct {
	videoRepo    domainRepo.VideoRepository
	purchaseRepo domainRepo.PurchaseRepository
	paymentRepo  domainRepo.PaymentRepository
	intents      IntentClient
	logger       *zap.Logger
}

// NewPurchaseUsecase creates a new purchase usecase
func NewPurchaseUsecase(
	videoRepo domainRepo.VideoRepository,
	purchaseRepo domainRepo.PurchaseRepository,
	paymentRepo domainRepo.PaymentRepository,
	intents IntentClient,
	logger *zap.Logger,
) *PurchaseUsecase {
	return &PurchaseUsecase{
		videoRepo:    videoRepo,
		purchaseRepo: purchaseRepo,
		paymentRepo:  paymentRepo,
		intents:      intents,
		logger:       logger,
	}
}

// InitiateCheckout creates a payment intent for the video and records a payment
// in status created. The intent metadata carries the user/video linkage the
// settlement path depends on.
func (u *PurchaseUsecase) InitiateCheckout(ctx context.Context, userID, videoID uuid.UUID) (*CheckoutResult, error) {
	video, err := u.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if !video.Published {
		return nil, domainErrors.ErrVideoNotPublished
	}

	if video.CreatorID == userID {
		return nil, domainErrors.ErrSelfPurchase
	}

	owned, err := u.purchaseRepo.HasCompleted(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, domainErrors.ErrAlreadyOwned
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(video.PriceCents),
		Currency: stripe.String(video.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("user_id", userID.String())
	params.AddMetadata("video_id", videoID.String())

	intent, err := u.intents.Create(params)
	if err != nil {
		u.logger.Error("Failed to create payment intent",
			zap.String("user_id", userID.String()),
			zap.String("video_id", videoID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	record := &model.PaymentRecord{
		PaymentReference: intent.ID,
		UserID:           userID,
		VideoID:          videoID,
		AmountCents:      video.PriceCents,
		Currency:         video.Currency,
		Status:           model.PaymentStatusCreated,
	}
	if err := u.paymentRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	u.logger.Info("Checkout initiated",
		zap.String("user_id", userID.String()),
		zap.String("video_id", videoID.String()),
		zap.String("payment_reference", intent.ID),
		zap.Int64("amount_cents", video.PriceCents))

	return &CheckoutResult{
		PaymentReference: intent.ID,
		ClientSecret:     intent.ClientSecret,
		AmountCents:      video.PriceCents,
		Currency:         video.Currency,
	}, nil
}

// HasAccess reports whether the user may stream the video: creators always see
// their own uploads, everyone else needs a completed purchase.
func (u *PurchaseUsecase) HasAccess(ctx context.Context, userID, videoID uuid.UUID) (bool, error) {
	video, err := u.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return false, err
	}

	if video.CreatorID == userID {
		return true, nil
	}

	return u.purchaseRepo.HasCompleted(ctx, userID, videoID)
}

// ListPurchases returns the user's completed purchases, newest first.
func (u *PurchaseUsecase) ListPurchases(ctx context.Context, userID uuid.UUID, params model.PaginationParams) ([]*model.Purchase, int64, error) {
	return u.purchaseRepo.ListByUser(ctx, userID, params)
}
