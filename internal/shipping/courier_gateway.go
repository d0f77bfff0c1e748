package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dailydeals-be/internal/logger"

	"go.uber.org/zap"
)

// courierGateway is the primary carrier integration (Shiplogic-style
// bearer-token JSON API).
type courierGateway struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

func NewCourierGateway(apiKey, apiURL string) Provider {
	if apiKey == "" {
		logger.L().Warn("courier API key not configured")
	}

	return &courierGateway{
		apiKey: apiKey,
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type courierShipmentRequest struct {
	Reference string `json:"reference"`
	Recipient struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"recipient"`
	DeliveryAddress struct {
		Street     string `json:"street"`
		City       string `json:"city"`
		Province   string `json:"province"`
		PostalCode string `json:"postalCode"`
		Country    string `json:"country"`
	} `json:"deliveryAddress"`
	Items []courierItem `json:"items"`

	TotalValue       int64  `json:"totalValue"`
	Currency         string `json:"currency"`
	ServiceType      string `json:"serviceType"`
	RequireSignature bool   `json:"requireSignature"`
	RequireOTP       bool   `json:"requireOTP"`
}

type courierItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Weight      int    `json:"weight"`
}

type courierShipmentResponse struct {
	TrackingNumber    string     `json:"trackingNumber"`
	Service           string     `json:"service"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
	Status            string     `json:"status"`
	Message           string     `json:"message,omitempty"`
}

func (g *courierGateway) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.apiURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read courier response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("courier API error (%d): %s", resp.StatusCode, string(respBytes))
	}

	return json.Unmarshal(respBytes, out)
}

func (g *courierGateway) CreateShipment(ctx context.Context, params CreateShipmentParams) (*Shipment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("provider", "courier"),
		zap.String("order_number", params.OrderNumber),
	)

	reqBody := courierShipmentRequest{
		Reference:        params.OrderNumber,
		TotalValue:       params.TotalCents,
		Currency:         "ZAR",
		ServiceType:      "standard",
		RequireSignature: true,
		RequireOTP:       true,
	}
	reqBody.Recipient.Name = params.RecipientName
	reqBody.Recipient.Email = params.RecipientEmail
	reqBody.Recipient.Phone = params.RecipientPhone
	reqBody.DeliveryAddress.Street = params.Address.Line1
	reqBody.DeliveryAddress.City = params.Address.City
	reqBody.DeliveryAddress.Province = params.Address.Province
	reqBody.DeliveryAddress.PostalCode = params.Address.PostalCode
	reqBody.DeliveryAddress.Country = "South Africa"

	for _, item := range params.Items {
		reqBody.Items = append(reqBody.Items, courierItem{
			Description: item.Name,
			Quantity:    item.Quantity,
			Weight:      1,
		})
	}

	log.Info("creating courier shipment")

	var res courierShipmentResponse
	if err := g.doJSON(ctx, http.MethodPost, "/v1/shipments", reqBody, &res); err != nil {
		log.Error("courier shipment creation failed", zap.Error(err))
		return nil, err
	}

	estimated := time.Now().AddDate(0, 0, 3)
	if res.EstimatedDelivery != nil {
		estimated = *res.EstimatedDelivery
	}

	service := res.Service
	if service == "" {
		service = "Shiplogic"
	}

	log.Info("courier shipment created", zap.String("tracking_number", res.TrackingNumber))

	return &Shipment{
		TrackingNumber:    res.TrackingNumber,
		Service:           service,
		EstimatedDelivery: estimated,
		Status:            StatusPending,
	}, nil
}

func (g *courierGateway) TrackShipment(ctx context.Context, trackingNumber string) (*Shipment, error) {
	var res courierShipmentResponse
	path := fmt.Sprintf("/v1/shipments/%s/tracking", trackingNumber)
	if err := g.doJSON(ctx, http.MethodGet, path, nil, &res); err != nil {
		logger.FromCtx(ctx).Error("courier tracking lookup failed",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		return nil, err
	}

	estimated := time.Now().AddDate(0, 0, 3)
	if res.EstimatedDelivery != nil {
		estimated = *res.EstimatedDelivery
	}

	return &Shipment{
		TrackingNumber:    res.TrackingNumber,
		Service:           res.Service,
		EstimatedDelivery: estimated,
		Status:            ShipmentStatus(res.Status),
	}, nil
}

type courierRatesRequest struct {
	Destination struct {
		City       string `json:"city"`
		Province   string `json:"province"`
		PostalCode string `json:"postalCode"`
	} `json:"destination"`
	Weight int `json:"weight"`
}

type courierRate struct {
	Service       string `json:"service"`
	Cost          int64  `json:"cost"`
	EstimatedDays int    `json:"estimatedDays"`
}

func (g *courierGateway) GetQuote(ctx context.Context, params CreateShipmentParams) ([]Quote, error) {
	reqBody := courierRatesRequest{Weight: len(params.Items)}
	reqBody.Destination.City = params.Address.City
	reqBody.Destination.Province = params.Address.Province
	reqBody.Destination.PostalCode = params.Address.PostalCode

	var rates []courierRate
	if err := g.doJSON(ctx, http.MethodPost, "/v1/rates", reqBody, &rates); err != nil {
		return nil, err
	}

	quotes := make([]Quote, 0, len(rates))
	for _, r := range rates {
		quotes = append(quotes, Quote{
			Service:       r.Service,
			CostCents:     r.Cost,
			EstimatedDays: r.EstimatedDays,
		})
	}
	return quotes, nil
}
