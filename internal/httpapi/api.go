// Package httpapi is the JSON transport for the storefront: catalog
// browsing, checkout, order history, address book, and the admin drop
// reseed. Handlers translate between wire DTOs and the domain services
// and map domain errors onto HTTP status codes.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"dailydeals-be/internal/address"
	"dailydeals-be/internal/catalog"
	"dailydeals-be/internal/drop"
	"dailydeals-be/internal/logger"
	"dailydeals-be/internal/order"

	"go.uber.org/zap"
)

type API struct {
	catalog   catalog.Service
	orders    order.Service
	addresses address.Service
	scheduler drop.Scheduler

	// defaultDropCount is the reseed size when the admin request does
	// not specify one.
	defaultDropCount int
}

func New(
	catalogSvc catalog.Service,
	orderSvc order.Service,
	addressSvc address.Service,
	scheduler drop.Scheduler,
	defaultDropCount int,
) *API {
	return &API{
		catalog:          catalogSvc,
		orders:           orderSvc,
		addresses:        addressSvc,
		scheduler:        scheduler,
		defaultDropCount: defaultDropCount,
	}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", a.handleListProducts)
	mux.HandleFunc("GET /api/categories", a.handleListCategories)

	mux.HandleFunc("POST /api/checkout", a.handleCheckout)
	mux.HandleFunc("GET /api/orders", a.handleListOrders)
	mux.HandleFunc("GET /api/orders/{id}", a.handleGetOrder)

	mux.HandleFunc("GET /api/addresses", a.handleListAddresses)
	mux.HandleFunc("POST /api/addresses", a.handleCreateAddress)
	mux.HandleFunc("DELETE /api/addresses/{id}", a.handleDeleteAddress)
	mux.HandleFunc("POST /api/addresses/{id}/default", a.handleSetDefaultAddress)

	mux.HandleFunc("POST /api/admin/drops/reseed", a.handleReseedDrops)
	mux.HandleFunc("POST /api/admin/orders/{id}/shipping", a.handleAdminSetShipping)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors to HTTP statuses. Anything unmapped is
// a 500 with a generic body so internals never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrFreeDropQuantityExceeded),
		errors.Is(err, address.ErrAddressLimitReached):
		status = http.StatusBadRequest
		message = err.Error()

	case errors.Is(err, order.ErrProductUnavailable),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrAlreadyClaimedToday),
		errors.Is(err, order.ErrDropNoLongerAvailable):
		status = http.StatusConflict
		message = err.Error()

	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, address.ErrAddressNotFound):
		status = http.StatusNotFound
		message = err.Error()

	case errors.Is(err, order.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = err.Error()

	case errors.Is(err, order.ErrPaymentProvider):
		status = http.StatusBadGateway
		message = "payment provider unavailable"

	default:
		var inv *drop.InsufficientInventoryError
		if errors.As(err, &inv) {
			status = http.StatusConflict
			message = err.Error()
		} else {
			logger.FromCtx(r.Context()).Error("unhandled API error",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
	}

	writeJSON(w, status, errorResponse{Error: message})
}
