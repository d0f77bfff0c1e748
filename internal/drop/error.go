package drop

import (
	"errors"
	"fmt"
)

var ErrInsufficientInventory = errors.New("not enough eligible products to seed drops")

// InsufficientInventoryError reports how far short the catalog fell of
// the requested drop count. Unwraps to ErrInsufficientInventory.
type InsufficientInventoryError struct {
	Needed int
	Found  int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("not enough products in stock: need at least %d, found %d", e.Needed, e.Found)
}

func (e *InsufficientInventoryError) Unwrap() error {
	return ErrInsufficientInventory
}
