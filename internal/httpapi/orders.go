package httpapi

import (
	"net/http"
	"time"

	"dailydeals-be/internal/middleware"
	"dailydeals-be/internal/order"

	"github.com/google/uuid"
)

type orderItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"price_cents"`
}

type orderResponse struct {
	ID                string              `json:"id"`
	OrderNumber       string              `json:"order_number"`
	Status            string              `json:"status"`
	PaymentStatus     string              `json:"payment_status"`
	SubtotalCents     int64               `json:"subtotal_cents"`
	ShippingCents     int64               `json:"shipping_cents"`
	TaxCents          int64               `json:"tax_cents"`
	TotalCents        int64               `json:"total_cents"`
	TrackingNumber    *string             `json:"tracking_number,omitempty"`
	CourierService    *string             `json:"courier_service,omitempty"`
	EstimatedDelivery *time.Time          `json:"estimated_delivery,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	Items             []orderItemResponse `json:"items"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:                o.ID.String(),
		OrderNumber:       o.OrderNumber,
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		SubtotalCents:     o.SubtotalCents,
		ShippingCents:     o.ShippingCents,
		TaxCents:          o.TaxCents,
		TotalCents:        o.TotalCents,
		TrackingNumber:    o.TrackingNumber,
		CourierService:    o.CourierService,
		EstimatedDelivery: o.EstimatedDelivery,
		CreatedAt:         o.CreatedAt,
		Items:             make([]orderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:   it.ProductID.String(),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			PriceCents:  it.PriceCents,
		})
	}
	return resp
}

func (a *API) handleListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, order.ErrUnauthorized)
		return
	}

	orders, err := a.orders.ListOrders(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": resp})
}

func (a *API) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, order.ErrUnauthorized)
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	o, err := a.orders.GetOrder(r.Context(), orderID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
