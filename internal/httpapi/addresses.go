package httpapi

import (
	"encoding/json"
	"net/http"

	"dailydeals-be/internal/address"
	"dailydeals-be/internal/middleware"
	"dailydeals-be/internal/order"

	"github.com/google/uuid"
)

type addressResponse struct {
	ID         string  `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Phone      string  `json:"phone,omitempty"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	Province   string  `json:"province"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
	IsDefault  bool    `json:"is_default"`
}

func toAddressResponse(a *address.Address) addressResponse {
	return addressResponse{
		ID:         a.ID.String(),
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		Province:   a.Province,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
	}
}

type createAddressRequest struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Phone        string  `json:"phone"`
	Line1        string  `json:"line1"`
	Line2        *string `json:"line2,omitempty"`
	City         string  `json:"city"`
	Province     string  `json:"province"`
	PostalCode   string  `json:"postal_code"`
	Country      string  `json:"country"`
	SetAsDefault bool    `json:"set_as_default"`
}

func (a *API) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, order.ErrUnauthorized)
		return
	}

	addrs, err := a.addresses.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]addressResponse, 0, len(addrs))
	for _, addr := range addrs {
		resp = append(resp, toAddressResponse(addr))
	}

	writeJSON(w, http.StatusOK, map[string]any{"addresses": resp})
}

func (a *API) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, order.ErrUnauthorized)
		return
	}

	var req createAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if req.FirstName == "" || req.Line1 == "" || req.City == "" || req.PostalCode == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing required address fields"})
		return
	}

	addr, err := a.addresses.Create(r.Context(), userID, address.CreateAddressInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Line1:        req.Line1,
		Line2:        req.Line2,
		City:         req.City,
		Province:     req.Province,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		SetAsDefault: req.SetAsDefault,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAddressResponse(addr))
}

func (a *API) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, order.ErrUnauthorized)
		return
	}

	addressID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid address id"})
		return
	}

	if err := a.addresses.Delete(r.Context(), userID, addressID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, order.ErrUnauthorized)
		return
	}

	addressID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid address id"})
		return
	}

	if err := a.addresses.SetDefault(r.Context(), userID, addressID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
