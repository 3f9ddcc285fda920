// Package store defines the persistence interface for dealership records.
// Implementations include PostgreSQL, MongoDB (the document-store backend
// the surrounding system runs on), Redis (read-through cache), and
// in-memory (for testing).
package store

import (
	"context"

	"github.com/motorlot/dealer-engine/internal/model"
)

// Store is the persistence interface. Records are immutable once inserted;
// the profit engine only ever reads them back.
type Store interface {
	// --- Vehicle registry ---

	// CreateVehicle persists a new vehicle record.
	CreateVehicle(ctx context.Context, v *model.Vehicle) error

	// GetVehicle retrieves a vehicle by its ID.
	GetVehicle(ctx context.Context, id string) (*model.Vehicle, error)

	// ListVehicles returns all registered vehicles.
	ListVehicles(ctx context.Context) ([]model.Vehicle, error)

	// --- Immutable transaction ledger ---

	// InsertTransaction appends an acquisition/disposal record.
	InsertTransaction(ctx context.Context, tx *model.Transaction) error

	// ListTransactions returns all transactions.
	ListTransactions(ctx context.Context) ([]model.Transaction, error)

	// ListTransactionsByVehicle returns all transactions for one vehicle.
	ListTransactionsByVehicle(ctx context.Context, vehicleID string) ([]model.Transaction, error)

	// ListVehicleIDs returns the distinct vehicle IDs present in the
	// transaction ledger.
	ListVehicleIDs(ctx context.Context) ([]string, error)

	// --- Expense records ---

	// InsertExpense appends an expense record.
	InsertExpense(ctx context.Context, e *model.Expense) error

	// ListExpenses returns all expenses.
	ListExpenses(ctx context.Context) ([]model.Expense, error)

	// ListExpensesByVehicle returns all expenses tied to one vehicle.
	ListExpensesByVehicle(ctx context.Context, vehicleID string) ([]model.Expense, error)
}
