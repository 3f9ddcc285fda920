// Package model defines the core domain types shared across the dealer engine.
// All monetary values use shopspring/decimal, never float64 for money.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction directions.
const (
	DirectionIn  = "IN"  // acquisition / purchase
	DirectionOut = "OUT" // disposal / sale
)

// LineItem is a named tax or fee component on a transaction.
type LineItem struct {
	Name       string          `json:"name" db:"name"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Percentage decimal.Decimal `json:"percentage,omitempty" db:"percentage"`
}

// Payment records one payment made against a transaction.
type Payment struct {
	Method string          `json:"method" db:"method"`
	Amount decimal.Decimal `json:"amount" db:"amount"`
	Date   time.Time       `json:"date" db:"date"`
}

// Transaction is an immutable acquisition or disposal record for one vehicle.
// TotalPrice is authoritative input (base + Σtaxes + Σfees − discount); the
// profit engine reads it as-is and never recomputes it.
type Transaction struct {
	ID             string          `json:"id" db:"id"`
	VehicleID      string          `json:"vehicle_id" db:"vehicle_id"`
	Direction      string          `json:"direction" db:"direction"` // "IN" or "OUT"
	Date           time.Time       `json:"date" db:"date"`
	BasePrice      decimal.Decimal `json:"base_price" db:"base_price"`
	Taxes          []LineItem      `json:"taxes,omitempty" db:"taxes"`
	Fees           []LineItem      `json:"fees,omitempty" db:"fees"`
	Discount       decimal.Decimal `json:"discount" db:"discount"`
	TotalPrice     decimal.Decimal `json:"total_price" db:"total_price"`
	CounterpartyID string          `json:"counterparty_id,omitempty" db:"counterparty_id"`
	Payments       []Payment       `json:"payments,omitempty" db:"payments"`
	Notes          string          `json:"notes,omitempty" db:"notes"`
}

// Expense is an immutable dated cost record. VehicleID is optional:
// fleet-wide expenses carry no vehicle reference and are excluded from
// per-vehicle attribution.
type Expense struct {
	ID        string          `json:"id" db:"id"`
	VehicleID string          `json:"vehicle_id,omitempty" db:"vehicle_id"`
	Category  string          `json:"category" db:"category"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Date      time.Time       `json:"date" db:"date"`
	PayeeID   string          `json:"payee_id,omitempty" db:"payee_id"`
}

// Vehicle is a registry record for one unit on the lot.
type Vehicle struct {
	ID        string    `json:"id" db:"id"`
	VIN       string    `json:"vin" db:"vin"`
	Make      string    `json:"make" db:"make"`
	Model     string    `json:"model" db:"model"`
	Year      int       `json:"year" db:"year"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Cycle is one buy→sell ownership span for a vehicle. Sale is nil while the
// vehicle is still owned; Profit is meaningful only when IsComplete is true.
type Cycle struct {
	Acquisition Transaction     `json:"acquisition"`
	Sale        *Transaction    `json:"sale,omitempty"`
	Expenses    []Expense       `json:"expenses"`
	Profit      decimal.Decimal `json:"profit"`
	IsComplete  bool            `json:"is_complete"`
}

// ProfitCalculation is the per-vehicle cycle breakdown.
// TotalProfit sums complete-cycle profits only; UnrealizedValue sums
// (acquisition cost + attributed expenses) over incomplete cycles.
type ProfitCalculation struct {
	VehicleID       string          `json:"vehicle_id"`
	Cycles          []Cycle         `json:"cycles"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	UnrealizedValue decimal.Decimal `json:"unrealized_value"`
}

// PortfolioProfit aggregates per-vehicle profit calculations across the fleet.
type PortfolioProfit struct {
	TotalProfit          decimal.Decimal     `json:"total_profit"`
	TotalUnrealizedValue decimal.Decimal     `json:"total_unrealized_value"`
	VehicleProfits       []ProfitCalculation `json:"vehicle_profits"`
}

// TransactionCount holds IN/OUT counts for a period report.
type TransactionCount struct {
	In  int `json:"in"`
	Out int `json:"out"`
}

// PeriodProfitReport is a cash-basis view over a date window. It is
// cycle-agnostic: a sale counts as revenue in its window even if the matching
// acquisition happened outside it.
type PeriodProfitReport struct {
	Revenue          decimal.Decimal  `json:"revenue"`
	Costs            decimal.Decimal  `json:"costs"`
	Expenses         decimal.Decimal  `json:"expenses"`
	NetProfit        decimal.Decimal  `json:"net_profit"`
	TransactionCount TransactionCount `json:"transaction_count"`
}

// VehicleValue is the per-vehicle line of an inventory valuation.
type VehicleValue struct {
	VehicleID       string          `json:"vehicle_id"`
	AcquisitionCost decimal.Decimal `json:"acquisition_cost"`
	Expenses        decimal.Decimal `json:"expenses"`
	TotalValue      decimal.Decimal `json:"total_value"`
}

// InventoryValueReport is the current book value of all vehicles presently
// owned, as of the captured timestamp.
type InventoryValueReport struct {
	AsOf         time.Time       `json:"as_of"`
	TotalValue   decimal.Decimal `json:"total_value"`
	VehicleCount int             `json:"vehicle_count"`
	Details      []VehicleValue  `json:"details"`
}
