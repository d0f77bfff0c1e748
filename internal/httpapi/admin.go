package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"dailydeals-be/internal/middleware"

	"github.com/google/uuid"
)

type reseedRequest struct {
	Count int `json:"count"`
}

type reseedDropResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	DropAt    time.Time `json:"drop_at"`
}

func (a *API) handleReseedDrops(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsAdmin(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin access required"})
		return
	}

	req := reseedRequest{Count: a.defaultDropCount}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
			return
		}
	}
	if req.Count <= 0 {
		req.Count = a.defaultDropCount
	}

	drops, err := a.scheduler.ReseedToday(r.Context(), req.Count)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]reseedDropResponse, 0, len(drops))
	for _, d := range drops {
		resp = append(resp, reseedDropResponse{
			ID:        d.ID.String(),
			ProductID: d.ProductID.String(),
			DropAt:    d.DropAt,
		})
	}

	writeJSON(w, http.StatusCreated, map[string]any{"drops": resp})
}

type adminShippingRequest struct {
	TrackingNumber    string    `json:"tracking_number"`
	CourierService    string    `json:"courier_service"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}

// handleAdminSetShipping backfills shipment fields on orders that were
// created while every courier was down.
func (a *API) handleAdminSetShipping(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsAdmin(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin access required"})
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	var req adminShippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if req.TrackingNumber == "" || req.CourierService == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "tracking number and courier service are required"})
		return
	}

	if err := a.orders.SetShippingDetails(
		r.Context(), orderID,
		req.TrackingNumber, req.CourierService, req.EstimatedDelivery,
	); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
