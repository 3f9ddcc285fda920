package profit

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motorlot/dealer-engine/internal/model"
)

// vehicleHolding is the per-vehicle accumulator for the inventory scan.
// Entries are value types in a local map; nothing aliases across vehicles.
type vehicleHolding struct {
	acquisitionCost decimal.Decimal
	expenses        decimal.Decimal
	isOwned         bool
}

// InventoryValue computes the current book value of every vehicle presently
// owned, across the whole fleet.
//
// All transactions are scanned in date order. An IN overwrites the vehicle's
// entry with a fresh {cost, 0, owned}; re-acquisition resets any expenses
// accumulated during a prior ownership of the same vehicle. An OUT marks an
// existing entry not-owned.
//
// After the scan, every expense whose vehicle is currently owned adds to that
// vehicle's total, with no date check at all. An expense dated before the
// current acquisition, or after `now`, still counts as long as the vehicle is
// presently owned. This is intentionally a different attribution rule than
// the date-bounded one used for cycles; see AttributeExpenses.
func InventoryValue(transactions []model.Transaction, expenses []model.Expense, now time.Time) model.InventoryValueReport {
	sorted := make([]model.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	holdings := make(map[string]vehicleHolding)

	for _, tx := range sorted {
		switch tx.Direction {
		case model.DirectionIn:
			holdings[tx.VehicleID] = vehicleHolding{
				acquisitionCost: tx.TotalPrice,
				expenses:        decimal.Zero,
				isOwned:         true,
			}
		case model.DirectionOut:
			if h, ok := holdings[tx.VehicleID]; ok {
				h.isOwned = false
				holdings[tx.VehicleID] = h
			}
		}
	}

	for _, e := range expenses {
		if e.VehicleID == "" {
			continue
		}
		if h, ok := holdings[e.VehicleID]; ok && h.isOwned {
			h.expenses = h.expenses.Add(e.Amount)
			holdings[e.VehicleID] = h
		}
	}

	report := model.InventoryValueReport{
		AsOf:       now,
		TotalValue: decimal.Zero,
		Details:    []model.VehicleValue{},
	}

	for vehicleID, h := range holdings {
		if !h.isOwned {
			continue
		}
		value := h.acquisitionCost.Add(h.expenses)
		report.TotalValue = report.TotalValue.Add(value)
		report.VehicleCount++
		report.Details = append(report.Details, model.VehicleValue{
			VehicleID:       vehicleID,
			AcquisitionCost: h.acquisitionCost,
			Expenses:        h.expenses,
			TotalValue:      value,
		})
	}

	// Map iteration order is random; keep report output deterministic.
	sort.Slice(report.Details, func(i, j int) bool {
		return report.Details[i].VehicleID < report.Details[j].VehicleID
	})

	return report
}
