package payment

import (
	"context"
	"fmt"
	"time"

	"dailydeals-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MockProvider settles everything synchronously and never fails. Used in
// development and in mock payments mode, where checkout auto-confirms.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	currency := params.Currency
	if currency == "" {
		currency = "ZAR"
	}

	intent := &Intent{
		ID:          fmt.Sprintf("mock_pi_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8]),
		AmountCents: params.AmountCents,
		Currency:    currency,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
		Metadata:    params.Metadata,
	}

	logger.FromCtx(ctx).Debug("mock payment intent created",
		zap.String("intent_id", intent.ID),
		zap.Int64("amount_cents", intent.AmountCents),
	)

	return intent, nil
}

func (p *MockProvider) ConfirmPayment(ctx context.Context, intentID string) (*Intent, error) {
	return &Intent{
		ID:       intentID,
		Currency: "ZAR",
		Status:   StatusSucceeded,
	}, nil
}

func (p *MockProvider) CancelPayment(ctx context.Context, intentID string) error {
	return nil
}

func (p *MockProvider) VerifyWebhook(rawBody []byte, signature string) error {
	return nil
}
