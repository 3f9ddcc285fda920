// Package validate checks incoming records before they reach the store.
//
// The profit engine itself is a set of total functions and performs no
// validation (degraded input yields degenerate-but-valid output); this
// package is the wrapping layer that keeps nonsense out of the ledger in the
// first place. Handlers call it on every write.
package validate

import (
	"errors"
	"fmt"

	"github.com/motorlot/dealer-engine/internal/model"
)

var (
	ErrMissingVehicle   = errors.New("validate: vehicle_id is required")
	ErrInvalidDirection = errors.New("validate: direction must be IN or OUT")
	ErrZeroDate         = errors.New("validate: date is required")
	ErrNegativeAmount   = errors.New("validate: amount must not be negative")
	ErrMissingCategory  = errors.New("validate: category is required")
)

// Transaction validates an acquisition/disposal record. It does not check
// that TotalPrice equals the component sum: TotalPrice is authoritative
// input and upstream systems may carry historical rounding.
func Transaction(tx model.Transaction) error {
	if tx.VehicleID == "" {
		return ErrMissingVehicle
	}
	if tx.Direction != model.DirectionIn && tx.Direction != model.DirectionOut {
		return fmt.Errorf("%w: got %q", ErrInvalidDirection, tx.Direction)
	}
	if tx.Date.IsZero() {
		return ErrZeroDate
	}
	if tx.BasePrice.IsNegative() {
		return fmt.Errorf("%w: base_price %s", ErrNegativeAmount, tx.BasePrice)
	}
	if tx.Discount.IsNegative() {
		return fmt.Errorf("%w: discount %s", ErrNegativeAmount, tx.Discount)
	}
	if tx.TotalPrice.IsNegative() {
		return fmt.Errorf("%w: total_price %s", ErrNegativeAmount, tx.TotalPrice)
	}
	for _, item := range tx.Taxes {
		if item.Amount.IsNegative() {
			return fmt.Errorf("%w: tax %q %s", ErrNegativeAmount, item.Name, item.Amount)
		}
	}
	for _, item := range tx.Fees {
		if item.Amount.IsNegative() {
			return fmt.Errorf("%w: fee %q %s", ErrNegativeAmount, item.Name, item.Amount)
		}
	}
	for _, p := range tx.Payments {
		if p.Amount.IsNegative() {
			return fmt.Errorf("%w: payment %s", ErrNegativeAmount, p.Amount)
		}
	}
	return nil
}

// Expense validates a cost record. VehicleID may be empty (fleet-wide
// expense); PayeeID is optional.
func Expense(e model.Expense) error {
	if e.Category == "" {
		return ErrMissingCategory
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	if e.Amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeAmount, e.Amount)
	}
	return nil
}
