package payment

import "dailydeals-be/internal/config"

// NewProvider selects the payment backend from configuration. This is
// the only place the provider kind is branched on.
func NewProvider(cfg *config.Config) Provider {
	if cfg.PaymentsMode == "live" {
		return NewPaylinkGateway(cfg.PaymentAppID, cfg.PaymentAppKey, cfg.PaymentCallbackURL)
	}
	return NewMockProvider()
}
