package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product is the authoritative inventory record. Stock is decremented
// only inside the order commit transaction and never goes negative.
type Product struct {
	ID                 uuid.UUID
	Name               string
	Description        string
	Brand              string
	Category           string
	PriceCents         int64
	OriginalPriceCents int64
	DiscountPercent    int
	Stock              int
	Active             bool
	Featured           bool
	ImageURL           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Category is one of the fixed storefront departments.
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

var Categories = []Category{
	{Slug: "electronics", Name: "Electronics"},
	{Slug: "appliances", Name: "Appliances"},
	{Slug: "hardware", Name: "Hardware"},
	{Slug: "phones-accessories", Name: "Phones & Accessories"},
	{Slug: "computers-tablets", Name: "Computers & Tablets"},
	{Slug: "gaming", Name: "Gaming"},
	{Slug: "tv-audio", Name: "TV & Audio"},
	{Slug: "fashion", Name: "Fashion"},
	{Slug: "beauty-personal-care", Name: "Beauty & Personal Care"},
	{Slug: "sports-outdoors", Name: "Sports & Outdoors"},
	{Slug: "toys-games", Name: "Toys & Games"},
	{Slug: "home-garden", Name: "Home & Garden"},
	{Slug: "kitchen-dining", Name: "Kitchen & Dining"},
	{Slug: "books", Name: "Books"},
	{Slug: "pet-supplies", Name: "Pet Supplies"},
	{Slug: "automotive", Name: "Automotive"},
	{Slug: "groceries", Name: "Groceries"},
}

type ListOptions struct {
	Category *string
	Search   *string
	Featured *bool
	Limit    int32
	Page     int32
}
