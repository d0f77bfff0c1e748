package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"dailydeals-be/internal/catalog"
)

type productResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description,omitempty"`
	Brand              string     `json:"brand,omitempty"`
	Category           string     `json:"category"`
	PriceCents         int64      `json:"price_cents"`
	OriginalPriceCents int64      `json:"original_price_cents"`
	DiscountPercent    int        `json:"discount_percent"`
	Stock              int        `json:"stock"`
	Featured           bool       `json:"featured"`
	ImageURL           string     `json:"image_url,omitempty"`
	DropAt             *time.Time `json:"drop_at,omitempty"`
	DropActive         bool       `json:"drop_active"`
}

type productListResponse struct {
	Products []productResponse `json:"products"`
	Total    int64             `json:"total"`
	Page     int32             `json:"page"`
	Limit    int32             `json:"limit"`
}

func toProductResponse(lp *catalog.ListedProduct) productResponse {
	resp := productResponse{
		ID:                 lp.Product.ID.String(),
		Name:               lp.Product.Name,
		Description:        lp.Product.Description,
		Brand:              lp.Product.Brand,
		Category:           lp.Product.Category,
		PriceCents:         lp.Product.PriceCents,
		OriginalPriceCents: lp.Product.OriginalPriceCents,
		DiscountPercent:    lp.Product.DiscountPercent,
		Stock:              lp.Product.Stock,
		Featured:           lp.Product.Featured,
		ImageURL:           lp.Product.ImageURL,
		DropAt:             lp.DropAt,
		DropActive:         lp.DropActive,
	}
	if lp.DropActive {
		// A live drop is presented at zero; the catalog price is kept in
		// original_price_cents for the strikethrough.
		resp.OriginalPriceCents = lp.Product.PriceCents
		resp.PriceCents = 0
	}
	return resp
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := catalog.ListOptions{}
	if v := q.Get("category"); v != "" {
		opts.Category = &v
	}
	if v := q.Get("search"); v != "" {
		opts.Search = &v
	}
	if v := q.Get("featured"); v != "" {
		featured := v == "true"
		opts.Featured = &featured
	}
	if v, err := strconv.ParseInt(q.Get("limit"), 10, 32); err == nil {
		opts.Limit = int32(v)
	}
	if v, err := strconv.ParseInt(q.Get("page"), 10, 32); err == nil {
		opts.Page = int32(v)
	}

	products, total, err := a.catalog.List(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 12
	}

	resp := productListResponse{
		Products: make([]productResponse, 0, len(products)),
		Total:    total,
		Page:     page,
		Limit:    limit,
	}
	for _, lp := range products {
		resp.Products = append(resp.Products, toProductResponse(lp))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": catalog.Categories})
}
