package store

import (
	"errors"
	"fmt"
)

// Domain errors surfaced to handlers. Their messages are user-facing:
// handlers flash or JSON-encode err.Error() directly for these, so they
// are worded for the customer, not the operator.
var (
	ErrNotFound          = errors.New("Product not found")
	ErrOutOfStock        = errors.New("Product is out of stock")
	ErrInvalidQuantity   = errors.New("Quantity must be at least 1")
	ErrInsufficientStock = errors.New("Not enough stock available")
	ErrEmptyCart         = errors.New("Cart is empty")
	ErrEmptySelection    = errors.New("Select at least one item to checkout.")
	ErrSelfDelete        = errors.New("You cannot delete your own account.")
)

// InsufficientStockError names the contended product when a checkout
// loses a stock check or the guarded decrement. errors.Is matches it
// against ErrInsufficientStock.
type InsufficientStockError struct {
	Product string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock for %s", e.Product)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// IsDomainError reports whether err is one of the user-facing errors
// above, as opposed to an opaque storage failure.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrOutOfStock, ErrInvalidQuantity, ErrInsufficientStock,
		ErrEmptyCart, ErrEmptySelection, ErrSelfDelete,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
