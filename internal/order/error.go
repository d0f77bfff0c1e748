package order

import "errors"

var (
	// -- Checkout preconditions --
	ErrEmptyCart                = errors.New("cart is empty")
	ErrInvalidQuantity          = errors.New("quantity must be greater than zero")
	ErrProductUnavailable       = errors.New("product not available")
	ErrInsufficientStock        = errors.New("insufficient stock")
	ErrFreeDropQuantityExceeded = errors.New("free drops are limited to 1 per customer")
	ErrAlreadyClaimedToday      = errors.New("free drop already claimed by this user today")

	// -- Commit-time races --
	ErrDropNoLongerAvailable = errors.New("free drop no longer available")

	// -- Providers --
	ErrPaymentProvider = errors.New("payment provider error")

	// -- Lookups & access --
	ErrOrderNotFound = errors.New("order not found")
	ErrUnauthorized  = errors.New("unauthorized")
)
