package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for the validation / ownership layer. They are produced
// before any mutation and map to 4xx statuses at the HTTP boundary.
var (
	ErrEmptyCart       = errors.New("sale must contain at least one item")
	ErrProductNotFound = errors.New("product not found")
	ErrProductNotOwned = errors.New("product does not belong to a store accessible by this user")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomNotOwned    = errors.New("room does not belong to this store")
	ErrTotalMismatch   = errors.New("declared total does not match the sum of line subtotals")
	ErrCashShort       = errors.New("cash received is less than the sale total")
	ErrSameRoom        = errors.New("source and destination rooms must differ")
	ErrItemNotFound    = errors.New("no inventory record for this product in this room")
	ErrStockBelowZero  = errors.New("operation would drive stock below zero")
)

// InsufficientInventoryError reports a sellable-stock shortfall. The
// allocator is authoritative: it raises this over the row-locked items, so
// there is no window between check and deduction.
type InsufficientInventoryError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}
