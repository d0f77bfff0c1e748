package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"dailydeals-be/internal/logger"

	"go.uber.org/zap"
)

const defaultPaylinkEndpoint = "https://api.ikhokha.com/public-api/v1/api"

// PaylinkGateway talks to the iKhokha paylink API. Requests are signed
// with HMAC-SHA256 over the escaped URL path plus body; webhooks are
// verified with the same scheme over the callback URL path plus raw body.
type paylinkGateway struct {
	apiEndpoint string
	appID       string
	appKey      string
	callbackURL string
	successURL  string
	failureURL  string
	cancelURL   string
	mode        string
	httpClient  *http.Client
}

func NewPaylinkGateway(appID, appKey, callbackURL string) Provider {
	if appID == "" || appKey == "" {
		logger.L().Warn("paylink gateway credentials are empty")
	}

	mode := "test"
	if os.Getenv("APP_ENV") == "production" {
		mode = "live"
	}

	return &paylinkGateway{
		apiEndpoint: defaultPaylinkEndpoint,
		appID:       appID,
		appKey:      appKey,
		callbackURL: callbackURL,
		successURL:  os.Getenv("PAYMENT_SUCCESS_URL"),
		failureURL:  os.Getenv("PAYMENT_FAILURE_URL"),
		cancelURL:   os.Getenv("PAYMENT_CANCEL_URL"),
		mode:        mode,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type paylinkRequest struct {
	EntityID              string      `json:"entityID"`
	ExternalEntityID      string      `json:"externalEntityID"`
	Amount                int64       `json:"amount"`
	Currency              string      `json:"currency"`
	RequesterURL          string      `json:"requesterUrl"`
	Description           string      `json:"description,omitempty"`
	PaymentReference      string      `json:"paymentReference,omitempty"`
	Mode                  string      `json:"mode"`
	ExternalTransactionID string      `json:"externalTransactionID"`
	URLs                  paylinkURLs `json:"urls"`
}

type paylinkURLs struct {
	CallbackURL    string `json:"callbackUrl"`
	SuccessPageURL string `json:"successPageUrl"`
	FailurePageURL string `json:"failurePageUrl"`
	CancelURL      string `json:"cancelUrl,omitempty"`
}

type paylinkResponse struct {
	ResponseCode          string `json:"responseCode"`
	Message               string `json:"message,omitempty"`
	PaylinkURL            string `json:"paylinkUrl,omitempty"`
	PaylinkID             string `json:"paylinkID,omitempty"`
	ExternalTransactionID string `json:"externalTransactionID,omitempty"`
}

type paylinkStatusResponse struct {
	PaylinkID string `json:"paylinkID"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}

// payloadToSign builds the string the gateway signs: the URL path
// concatenated with the body, with quotes and backslashes escaped.
func payloadToSign(rawURL, body string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Path == "" {
		return "", fmt.Errorf("no path in url %q", rawURL)
	}
	return escapePayload(u.Path + body), nil
}

func escapePayload(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '"', '\'':
			b.WriteByte('\\')
			b.WriteRune(r)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (g *paylinkGateway) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(strings.TrimSpace(g.appKey)))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *paylinkGateway) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	currency := params.Currency
	if currency == "" {
		currency = "ZAR"
	}

	orderNumber := params.Metadata["order_number"]

	log := logger.FromCtx(ctx).With(
		zap.String("gateway", "paylink"),
		zap.Int64("amount_cents", params.AmountCents),
		zap.String("order_number", orderNumber),
	)

	reqBody := paylinkRequest{
		EntityID:              g.appID,
		ExternalEntityID:      "dailydeals-be",
		Amount:                params.AmountCents,
		Currency:              currency,
		RequesterURL:          g.successURL,
		Description:           "Daily Deals order " + orderNumber,
		PaymentReference:      orderNumber,
		Mode:                  g.mode,
		ExternalTransactionID: orderNumber,
		URLs: paylinkURLs{
			CallbackURL:    g.callbackURL,
			SuccessPageURL: g.successURL,
			FailurePageURL: g.failureURL,
			CancelURL:      g.cancelURL,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := g.apiEndpoint + "/payment"
	payload, err := payloadToSign(endpoint, string(jsonBody))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("IK-APPID", strings.TrimSpace(g.appID))
	req.Header.Set("IK-SIGN", g.sign(payload))

	log.Info("creating paylink")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("paylink request failed", zap.Error(err))
		return nil, fmt.Errorf("paylink request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read paylink response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("paylink returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", respBytes),
		)
		return nil, fmt.Errorf("paylink error: %s", string(respBytes))
	}

	var res paylinkResponse
	if err := json.Unmarshal(respBytes, &res); err != nil {
		return nil, err
	}

	if res.ResponseCode != "00" {
		log.Error("paylink rejected",
			zap.String("response_code", res.ResponseCode),
			zap.String("message", res.Message),
		)
		return nil, fmt.Errorf("paylink rejected: %s", res.Message)
	}

	log.Info("paylink created", zap.String("paylink_id", res.PaylinkID))

	return &Intent{
		ID:          res.PaylinkID,
		AmountCents: params.AmountCents,
		Currency:    currency,
		Status:      StatusPending,
		PayURL:      res.PaylinkURL,
		CreatedAt:   time.Now(),
		Metadata:    params.Metadata,
	}, nil
}

func (g *paylinkGateway) ConfirmPayment(ctx context.Context, intentID string) (*Intent, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("gateway", "paylink"),
		zap.String("intent_id", intentID),
	)

	endpoint := fmt.Sprintf("%s/getStatus/%s", g.apiEndpoint, intentID)
	payload, err := payloadToSign(endpoint, "")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("IK-APPID", strings.TrimSpace(g.appID))
	req.Header.Set("IK-SIGN", g.sign(payload))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("status request failed", zap.Error(err))
		return nil, fmt.Errorf("paylink status request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read paylink response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrIntentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paylink status error: %s", string(respBytes))
	}

	var res paylinkStatusResponse
	if err := json.Unmarshal(respBytes, &res); err != nil {
		return nil, err
	}

	status := StatusPending
	switch strings.ToUpper(res.Status) {
	case "SUCCESS", "PAID":
		status = StatusSucceeded
	case "FAILURE", "FAILED", "EXPIRED":
		status = StatusFailed
	}

	return &Intent{
		ID:          res.PaylinkID,
		AmountCents: res.Amount,
		Currency:    "ZAR",
		Status:      status,
	}, nil
}

func (g *paylinkGateway) CancelPayment(ctx context.Context, intentID string) error {
	// The paylink API has no cancel call; unpaid links expire on their
	// own. Log so operators can trace abandoned intents.
	logger.FromCtx(ctx).Info("paylink cancel requested, link left to expire",
		zap.String("intent_id", intentID),
	)
	return nil
}

func (g *paylinkGateway) VerifyWebhook(rawBody []byte, signature string) error {
	payload, err := payloadToSign(g.callbackURL, string(rawBody))
	if err != nil {
		return err
	}

	expected := g.sign(payload)
	if !hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature))) {
		return ErrInvalidSignature
	}
	return nil
}
