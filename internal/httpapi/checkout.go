package httpapi

import (
	"encoding/json"
	"net/http"

	"dailydeals-be/internal/middleware"
	"dailydeals-be/internal/order"

	"github.com/google/uuid"
)

type checkoutLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type checkoutRequest struct {
	Items     []checkoutLineRequest `json:"items"`
	AddressID *string               `json:"address_id,omitempty"`
}

type checkoutResponse struct {
	OrderID        string  `json:"order_id"`
	OrderNumber    string  `json:"order_number"`
	TotalCents     int64   `json:"total_cents"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
	PaymentStatus  string  `json:"payment_status"`
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, order.ErrUnauthorized)
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	input := order.CheckoutInput{
		RecipientEmail: middleware.UserEmailFromContext(r.Context()),
	}
	for _, line := range req.Items {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid product id"})
			return
		}
		input.Lines = append(input.Lines, order.CartLine{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}
	if req.AddressID != nil {
		addressID, err := uuid.Parse(*req.AddressID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid address id"})
			return
		}
		input.AddressID = &addressID
	}

	res, err := a.orders.Checkout(r.Context(), userID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, checkoutResponse{
		OrderID:        res.OrderID.String(),
		OrderNumber:    res.OrderNumber,
		TotalCents:     res.TotalCents,
		TrackingNumber: res.TrackingNumber,
		PaymentStatus:  string(res.PaymentStatus),
	})
}
