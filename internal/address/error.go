package address

import "errors"

var (
	ErrAddressNotFound     = errors.New("address not found")
	ErrAddressLimitReached = errors.New("maximum of 4 addresses allowed per user")
)
