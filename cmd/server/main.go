package main

import (
	"net/http"

	"dailydeals-be/internal/address"
	"dailydeals-be/internal/catalog"
	"dailydeals-be/internal/clock"
	"dailydeals-be/internal/config"
	"dailydeals-be/internal/db"
	"dailydeals-be/internal/drop"
	"dailydeals-be/internal/httpapi"
	"dailydeals-be/internal/logger"
	"dailydeals-be/internal/metrics"
	"dailydeals-be/internal/middleware"
	"dailydeals-be/internal/order"
	"dailydeals-be/internal/payment"
	"dailydeals-be/internal/shipping"
	"dailydeals-be/internal/webhook"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	clk := clock.NewSAST()
	met := metrics.NewCheckout()

	paymentProvider := payment.NewProvider(cfg)
	courier := shipping.NewChain(
		shipping.NewCourierGateway(cfg.CourierAPIKey, cfg.CourierAPIURL),
		shipping.NewMockProvider(),
	)

	catalogRepo := catalog.NewRepository(database)
	catalogSvc := catalog.NewService(catalogRepo, clk)

	dropRepo := drop.NewRepository(database)
	dropWindow := clock.Window{StartHour: cfg.DropWindowStart, EndHour: cfg.DropWindowEnd}
	scheduler := drop.NewScheduler(dropRepo, clk, dropWindow)

	addressRepo := address.NewRepository(database)
	addressSvc := address.NewService(addressRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(
		orderRepo, catalogRepo, dropRepo, addressRepo,
		paymentProvider, courier, clk,
		order.PricingFromConfig(cfg), met,
	)

	mux := http.NewServeMux()
	httpapi.New(catalogSvc, orderSvc, addressSvc, scheduler, cfg.DropDailyCount).Register(mux)
	mux.Handle("POST /webhooks/payment", webhook.NewPaymentHandler(orderSvc, paymentProvider))
	mux.Handle("POST /webhooks/shipment", webhook.NewShipmentHandler(orderSvc))

	handler := logger.RequestIDMiddleware(
		logger.LoggingMiddleware(
			middleware.CORS(
				middleware.AuthMiddleware(
					middleware.RateLimitMiddleware(mux),
				),
			),
		),
	)

	logger.L().Info("storefront API listening",
		zap.String("port", cfg.AppPort),
		zap.String("env", cfg.AppEnv),
		zap.String("payments_mode", cfg.PaymentsMode),
	)
	if err := http.ListenAndServe(":"+cfg.AppPort, handler); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
