// Package payment abstracts the payment gateway behind a single
// Provider interface. Concrete backends (mock, paylink gateway) are
// selected by configuration at startup; business logic never branches
// on the provider kind.
package payment

import (
	"context"
	"errors"
	"time"
)

type IntentStatus string

const (
	StatusPending   IntentStatus = "pending"
	StatusSucceeded IntentStatus = "succeeded"
	StatusFailed    IntentStatus = "failed"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrIntentNotFound   = errors.New("payment intent not found")
)

type Intent struct {
	ID          string
	AmountCents int64
	Currency    string
	Status      IntentStatus
	// PayURL is where the customer completes payment, when the gateway
	// uses a hosted page.
	PayURL    string
	CreatedAt time.Time
	Metadata  map[string]string
}

type CreateIntentParams struct {
	AmountCents int64
	Currency    string
	Metadata    map[string]string
}

type Provider interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)
	ConfirmPayment(ctx context.Context, intentID string) (*Intent, error)
	CancelPayment(ctx context.Context, intentID string) error

	// VerifyWebhook checks the gateway's signature over the raw callback
	// body. Must be called before any state mutation.
	VerifyWebhook(rawBody []byte, signature string) error
}
