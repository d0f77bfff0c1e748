package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// VATMode decides whether VAT is already included in listed prices or
// charged as a separate line on top of the subtotal.
type VATMode string

const (
	VATInclusive VATMode = "inclusive"
	VATExclusive VATMode = "exclusive"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	// Payments
	PaymentsMode  string // "mock" or "live"
	PaymentAppID  string
	PaymentAppKey string
	// Absolute URL the gateway calls back on; part of the signed payload.
	PaymentCallbackURL string

	// Shipping
	CourierAPIKey string
	CourierAPIURL string

	// Checkout pricing, all amounts in cents (ZAR).
	FreeShippingThresholdCents int64
	FlatShippingFeeCents       int64
	VATMode                    VATMode
	VATRatePercent             int64

	// Free-drop promotion
	DropDailyCount  int
	DropWindowStart int // hour of day, SAST
	DropWindowEnd   int
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    os.Getenv("APP_PORT"),
		AppEnv:     os.Getenv("APP_ENV"),

		PaymentsMode:       getEnv("PAYMENTS_MODE", "mock"),
		PaymentAppID:       os.Getenv("PAYMENT_APP_ID"),
		PaymentAppKey:      os.Getenv("PAYMENT_APP_KEY"),
		PaymentCallbackURL: os.Getenv("PAYMENT_CALLBACK_URL"),

		CourierAPIKey: os.Getenv("COURIER_API_KEY"),
		CourierAPIURL: getEnv("COURIER_API_URL", "https://api.shiplogic.com"),

		FreeShippingThresholdCents: getEnvInt64("FREE_SHIPPING_THRESHOLD_CENTS", 50000),
		FlatShippingFeeCents:       getEnvInt64("FLAT_SHIPPING_FEE_CENTS", 6500),
		VATMode:                    VATMode(getEnv("VAT_MODE", string(VATInclusive))),
		VATRatePercent:             getEnvInt64("VAT_RATE_PERCENT", 15),

		DropDailyCount:  int(getEnvInt64("DROP_DAILY_COUNT", 10)),
		DropWindowStart: int(getEnvInt64("DROP_WINDOW_START_HOUR", 8)),
		DropWindowEnd:   int(getEnvInt64("DROP_WINDOW_END_HOUR", 12)),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	if cfg.VATMode != VATInclusive && cfg.VATMode != VATExclusive {
		log.Fatalf("invalid VAT_MODE %q", cfg.VATMode)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("invalid value for %s: %q", key, v)
	}
	return n
}
