package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
	"github.com/clipmarket/clipmarket/internal/usecase"
)

// MockSettlementRepository is a mock implementation of SettlementRepository
type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) ApplySucceeded(ctx context.Context, s domainRepo.SucceededSettlement) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettlementRepository) ApplyStatus(ctx context.Context, reference string, status model.PaymentStatus, failureCode, failureMessage *string) error {
	args := m.Called(ctx, reference, status, failureCode, failureMessage)
	return args.Error(0)
}

func succeededEvent(t *testing.T, intentID string, amount int64, metadata map[string]string) stripe.Event {
	t.Helper()

	payload := map[string]interface{}{
		"id":       intentID,
		"amount":   amount,
		"currency": "usd",
		"metadata": metadata,
		"latest_charge": map[string]interface{}{
			"id": "ch_" + intentID,
		},
	}
	raw, err := json.Marshal(payload)
	assert.NoError(t, err)

	return stripe.Event{
		ID:   "evt_" + intentID,
		Type: stripe.EventTypePaymentIntentSucceeded,
		Data: &stripe.EventData{Raw: raw},
	}
}

func statusEvent(t *testing.T, eventType stripe.EventType, intentID string, extra map[string]interface{}) stripe.Event {
	t.Helper()

	payload := map[string]interface{}{
		"id": intentID,
	}
	for k, v := range extra {
		payload[k] = v
	}
	raw, err := json.Marshal(payload)
	assert.NoError(t, err)

	return stripe.Event{
		ID:   "evt_" + intentID,
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestSettlementService_Handles(t *testing.T) {
	service := usecase.NewSettlementService(new(MockSettlementRepository), zap.NewNop())

	assert.True(t, service.Handles(stripe.EventTypePaymentIntentSucceeded))
	assert.True(t, service.Handles(stripe.EventTypePaymentIntentPaymentFailed))
	assert.True(t, service.Handles(stripe.EventTypePaymentIntentCanceled))
	assert.True(t, service.Handles(stripe.EventTypePaymentIntentRequiresAction))
	assert.False(t, service.Handles(stripe.EventTypeChargeRefunded))
	assert.False(t, service.Handles(stripe.EventTypeCustomerCreated))
}

func TestSettlementService_ApplySucceeded(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	userID := uuid.New()
	videoID := uuid.New()

	metadata := map[string]string{
		"user_id":  userID.String(),
		"video_id": videoID.String(),
	}

	t.Run("settles a succeeded payment", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		mockRepo.On("ApplySucceeded", ctx, domainRepo.SucceededSettlement{
			PaymentReference: "pi_123",
			ChargeReference:  "ch_pi_123",
			UserID:           userID,
			VideoID:          videoID,
			AmountCents:      499,
			Currency:         "USD",
		}).Return(true, nil)

		err := service.Apply(ctx, succeededEvent(t, "pi_123", 499, metadata))

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("redelivery of an applied settlement is a no-op", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		// applied=false reports the repository skipped every mutation
		mockRepo.On("ApplySucceeded", ctx, mock.Anything).Return(false, nil)

		event := succeededEvent(t, "pi_dup", 499, metadata)
		assert.NoError(t, service.Apply(ctx, event))
		assert.NoError(t, service.Apply(ctx, event))

		mockRepo.AssertNumberOfCalls(t, "ApplySucceeded", 2)
	})

	t.Run("missing metadata is not retriable", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		err := service.Apply(ctx, succeededEvent(t, "pi_bare", 499, nil))

		assert.ErrorIs(t, err, domainErrors.ErrMissingMetadata)
		mockRepo.AssertNotCalled(t, "ApplySucceeded")
	})

	t.Run("partial metadata is rejected", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		err := service.Apply(ctx, succeededEvent(t, "pi_half", 499, map[string]string{
			"user_id": userID.String(),
		}))

		assert.ErrorIs(t, err, domainErrors.ErrMissingMetadata)
		mockRepo.AssertNotCalled(t, "ApplySucceeded")
	})

	t.Run("non-uuid metadata is rejected", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		err := service.Apply(ctx, succeededEvent(t, "pi_junk", 499, map[string]string{
			"user_id":  "not-a-uuid",
			"video_id": videoID.String(),
		}))

		assert.ErrorIs(t, err, domainErrors.ErrMissingMetadata)
		mockRepo.AssertNotCalled(t, "ApplySucceeded")
	})

	t.Run("unknown payment reference acknowledges for reconciliation", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		mockRepo.On("ApplySucceeded", ctx, mock.Anything).Return(false, domainErrors.ErrPaymentNotFound)

		err := service.Apply(ctx, succeededEvent(t, "pi_foreign", 499, metadata))

		assert.ErrorIs(t, err, domainErrors.ErrMissingMetadata)
	})

	t.Run("storage failure propagates so the provider redelivers", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		mockRepo.On("ApplySucceeded", ctx, mock.Anything).Return(false, errors.New("deadlock detected"))

		err := service.Apply(ctx, succeededEvent(t, "pi_dead", 499, metadata))

		assert.Error(t, err)
		assert.NotErrorIs(t, err, domainErrors.ErrMissingMetadata)
	})

	t.Run("malformed payload is rejected", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		err := service.Apply(ctx, stripe.Event{
			ID:   "evt_bad",
			Type: stripe.EventTypePaymentIntentSucceeded,
			Data: &stripe.EventData{Raw: json.RawMessage(`{"id": 42}`)},
		})

		assert.ErrorIs(t, err, domainErrors.ErrMalformedEvent)
		mockRepo.AssertNotCalled(t, "ApplySucceeded")
	})

	t.Run("intent without id is rejected", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		err := service.Apply(ctx, stripe.Event{
			ID:   "evt_noid",
			Type: stripe.EventTypePaymentIntentSucceeded,
			Data: &stripe.EventData{Raw: json.RawMessage(`{"amount": 499}`)},
		})

		assert.ErrorIs(t, err, domainErrors.ErrMalformedEvent)
	})
}

func TestSettlementService_AmountFidelity(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	userID := uuid.New()
	videoID := uuid.New()

	metadata := map[string]string{
		"user_id":  userID.String(),
		"video_id": videoID.String(),
	}

	// Minor units must convert to exact decimal amounts with no float drift,
	// including values like 0.1 that binary floats cannot represent.
	t.Run("minor units convert exactly", func(t *testing.T) {
		cases := []struct {
			cents int64
			want  string
		}{
			{1, "0.01"},
			{10, "0.1"},
			{99, "0.99"},
			{100, "1"},
			{2919, "29.19"},
			{9999999, "99999.99"},
		}

		for _, tc := range cases {
			got := domainRepo.SucceededSettlement{AmountCents: tc.cents}.Amount()
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
				"cents=%d got=%s want=%s", tc.cents, got, tc.want)
		}
	})

	t.Run("ten thousand settlements sum without drift", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		total := decimal.Zero
		var totalCents int64
		mockRepo.On("ApplySucceeded", ctx, mock.Anything).
			Run(func(args mock.Arguments) {
				s := args.Get(1).(domainRepo.SucceededSettlement)
				total = total.Add(s.Amount())
				totalCents += s.AmountCents
			}).
			Return(true, nil)

		for i := 0; i < 10000; i++ {
			cents := int64(i%997 + 1)
			event := succeededEvent(t, fmt.Sprintf("pi_%d", i), cents, metadata)
			assert.NoError(t, service.Apply(ctx, event))
		}

		assert.True(t, total.Equal(decimal.New(totalCents, -2)),
			"accumulated %s, expected %s", total, decimal.New(totalCents, -2))
	})
}

func TestSettlementService_ApplyStatus(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("failed payment carries failure details", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		code := "card_declined"
		msg := "Your card was declined."
		mockRepo.On("ApplyStatus", ctx, "pi_f1", model.PaymentStatusFailed, &code, &msg).Return(nil)

		err := service.Apply(ctx, statusEvent(t, stripe.EventTypePaymentIntentPaymentFailed, "pi_f1", map[string]interface{}{
			"last_payment_error": map[string]interface{}{
				"code":    code,
				"message": msg,
			},
		}))

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("failed payment without error details", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		mockRepo.On("ApplyStatus", ctx, "pi_f2", model.PaymentStatusFailed, (*string)(nil), (*string)(nil)).Return(nil)

		err := service.Apply(ctx, statusEvent(t, stripe.EventTypePaymentIntentPaymentFailed, "pi_f2", nil))

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("canceled payment records the reason", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		reason := "requested_by_customer"
		mockRepo.On("ApplyStatus", ctx, "pi_c1", model.PaymentStatusCanceled, (*string)(nil), &reason).Return(nil)

		err := service.Apply(ctx, statusEvent(t, stripe.EventTypePaymentIntentCanceled, "pi_c1", map[string]interface{}{
			"cancellation_reason": reason,
		}))

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("requires action moves the record forward", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		mockRepo.On("ApplyStatus", ctx, "pi_ra", model.PaymentStatusRequiresAction, (*string)(nil), (*string)(nil)).Return(nil)

		err := service.Apply(ctx, statusEvent(t, stripe.EventTypePaymentIntentRequiresAction, "pi_ra", nil))

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown reference is acknowledged", func(t *testing.T) {
		mockRepo := new(MockSettlementRepository)
		service := usecase.NewSettlementService(mockRepo, logger)

		mockRepo.On("ApplyStatus", ctx, "pi_ghost", model.PaymentStatusFailed, (*string)(nil), (*string)(nil)).
			Return(domainErrors.ErrPaymentNotFound)

		err := service.Apply(ctx, statusEvent(t, stripe.EventTypePaymentIntentPaymentFailed, "pi_ghost", nil))

		assert.ErrorIs(t, err, domainErrors.ErrMissingMetadata)
	})
}

func TestSettlementService_UnhandledType(t *testing.T) {
	mockRepo := new(MockSettlementRepository)
	service := usecase.NewSettlementService(mockRepo, zap.NewNop())

	err := service.Apply(context.Background(), stripe.Event{
		ID:   "evt_refund",
		Type: stripe.EventTypeChargeRefunded,
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	})

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "ApplySucceeded")
	mockRepo.AssertNotCalled(t, "ApplyStatus")
}

// paymentStateRepo tracks one payment state per reference and enforces the
// terminal-state guard the way storage does: terminal records never move.
type paymentStateRepo struct {
	status     map[string]model.PaymentStatus
	applyCount int
}

func newPaymentStateRepo() *paymentStateRepo {
	return &paymentStateRepo{status: make(map[string]model.PaymentStatus)}
}

func (r *paymentStateRepo) ApplySucceeded(_ context.Context, s domainRepo.SucceededSettlement) (bool, error) {
	if r.status[s.PaymentReference].IsTerminal() {
		return false, nil
	}
	r.status[s.PaymentReference] = model.PaymentStatusSucceeded
	r.applyCount++
	return true, nil
}

func (r *paymentStateRepo) ApplyStatus(_ context.Context, reference string, status model.PaymentStatus, _, _ *string) error {
	if r.status[reference].IsTerminal() {
		return nil
	}
	r.status[reference] = status
	return nil
}

func TestSettlementService_TerminalStateImmutable(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	metadata := map[string]string{
		"user_id":  uuid.New().String(),
		"video_id": uuid.New().String(),
	}

	t.Run("redelivered success settles exactly once", func(t *testing.T) {
		repo := newPaymentStateRepo()
		service := usecase.NewSettlementService(repo, logger)
		event := succeededEvent(t, "pi_once", 1299, metadata)

		assert.NoError(t, service.Apply(ctx, event))
		assert.NoError(t, service.Apply(ctx, event))

		assert.Equal(t, 1, repo.applyCount)
		assert.Equal(t, model.PaymentStatusSucceeded, repo.status["pi_once"])
	})

	t.Run("success after cancellation is not applied", func(t *testing.T) {
		repo := newPaymentStateRepo()
		service := usecase.NewSettlementService(repo, logger)

		canceled := statusEvent(t, stripe.EventTypePaymentIntentCanceled, "pi_dead", map[string]interface{}{
			"cancellation_reason": "abandoned",
		})
		assert.NoError(t, service.Apply(ctx, canceled))

		// An out-of-order success for the same payment arrives afterwards.
		assert.NoError(t, service.Apply(ctx, succeededEvent(t, "pi_dead", 1299, metadata)))

		assert.Equal(t, 0, repo.applyCount)
		assert.Equal(t, model.PaymentStatusCanceled, repo.status["pi_dead"])
	})

	t.Run("failure after settlement leaves the record settled", func(t *testing.T) {
		repo := newPaymentStateRepo()
		service := usecase.NewSettlementService(repo, logger)

		assert.NoError(t, service.Apply(ctx, succeededEvent(t, "pi_keep", 1299, metadata)))

		failed := statusEvent(t, stripe.EventTypePaymentIntentPaymentFailed, "pi_keep", map[string]interface{}{
			"last_payment_error": map[string]interface{}{"code": "card_declined"},
		})
		assert.NoError(t, service.Apply(ctx, failed))

		assert.Equal(t, model.PaymentStatusSucceeded, repo.status["pi_keep"])
		assert.Equal(t, 1, repo.applyCount)
	})

	t.Run("requires_action then success still settles", func(t *testing.T) {
		repo := newPaymentStateRepo()
		service := usecase.NewSettlementService(repo, logger)

		assert.NoError(t, service.Apply(ctx, statusEvent(t, stripe.EventTypePaymentIntentRequiresAction, "pi_3ds", nil)))
		assert.NoError(t, service.Apply(ctx, succeededEvent(t, "pi_3ds", 1299, metadata)))

		assert.Equal(t, 1, repo.applyCount)
		assert.Equal(t, model.PaymentStatusSucceeded, repo.status["pi_3ds"])
	})
}
