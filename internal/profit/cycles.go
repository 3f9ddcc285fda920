// Package profit implements the ownership-cycle profit engine.
//
// Given a vehicle's acquisition (IN) and disposal (OUT) transactions plus its
// dated expenses, it reconstructs buy→sell ownership cycles, attributes each
// expense to the cycle active on its date, and computes realized profit per
// completed cycle and unrealized cost basis for vehicles still on the lot.
//
// Every function here is total and pure: malformed chronology degrades to a
// structurally valid result, never an error. The wall clock is threaded in as
// an explicit `now` parameter, captured once per invocation by the caller,
// so results are deterministic under a frozen clock.
//
// All monetary values use shopspring/decimal, never float64 for money.
package profit

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motorlot/dealer-engine/internal/model"
)

// BuildCycles partitions one vehicle's transactions into ownership cycles.
//
// Transactions may arrive unsorted; they are stable-sorted by date so ties
// keep input order. The scan keeps at most one open cycle:
//
//   - IN with no open cycle: open a new cycle.
//   - IN while a cycle is open (duplicate acquisition in malformed data):
//     the open cycle is force-closed as incomplete with expenses attributed
//     through `now`, and the new IN opens a fresh cycle. This mirrors the
//     upstream data-correction behavior; it is a policy, not a fix.
//   - OUT with an open cycle: close it as complete, attributing expenses in
//     [acquisition date, sale date] and computing realized profit.
//   - OUT with no open cycle: dropped. A disposal with no matching prior
//     acquisition is unattributable.
//
// A cycle still open after the scan is returned incomplete with expenses
// attributed over [acquisition date, now].
func BuildCycles(vehicleID string, transactions []model.Transaction, expenses []model.Expense, now time.Time) model.ProfitCalculation {
	calc := model.ProfitCalculation{
		VehicleID:       vehicleID,
		Cycles:          []model.Cycle{},
		TotalProfit:     decimal.Zero,
		UnrealizedValue: decimal.Zero,
	}

	sorted := make([]model.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var open *model.Cycle

	for i := range sorted {
		tx := sorted[i]
		switch tx.Direction {
		case model.DirectionIn:
			if open != nil {
				calc.Cycles = append(calc.Cycles, closeIncomplete(*open, expenses, now))
			}
			open = &model.Cycle{Acquisition: tx}

		case model.DirectionOut:
			if open == nil {
				continue // disposal without acquisition: unattributable
			}
			sale := tx
			attributed := AttributeExpenses(expenses, open.Acquisition.Date, sale.Date)
			calc.Cycles = append(calc.Cycles, model.Cycle{
				Acquisition: open.Acquisition,
				Sale:        &sale,
				Expenses:    attributed,
				Profit:      CycleProfit(open.Acquisition, sale, attributed),
				IsComplete:  true,
			})
			open = nil
		}
	}

	if open != nil {
		calc.Cycles = append(calc.Cycles, closeIncomplete(*open, expenses, now))
	}

	for _, c := range calc.Cycles {
		if c.IsComplete {
			calc.TotalProfit = calc.TotalProfit.Add(c.Profit)
		} else {
			calc.UnrealizedValue = calc.UnrealizedValue.Add(c.Acquisition.TotalPrice).Add(sumExpenses(c.Expenses))
		}
	}

	return calc
}

// closeIncomplete finalizes a still-open cycle: expenses attribute from the
// acquisition date through the captured `now`, so repeated runs over time can
// legitimately shift which expenses an open cycle carries.
func closeIncomplete(c model.Cycle, expenses []model.Expense, now time.Time) model.Cycle {
	c.Expenses = AttributeExpenses(expenses, c.Acquisition.Date, now)
	c.IsComplete = false
	c.Profit = decimal.Zero
	return c
}

// AttributeExpenses selects expenses with start ≤ date ≤ end, inclusive both
// ends. Pure filter; the expense slice is expected to already be restricted
// to the vehicle in question.
func AttributeExpenses(expenses []model.Expense, start, end time.Time) []model.Expense {
	attributed := []model.Expense{}
	for _, e := range expenses {
		if !e.Date.Before(start) && !e.Date.After(end) {
			attributed = append(attributed, e)
		}
	}
	return attributed
}

// CycleProfit computes realized profit for one completed cycle:
//
//	profit = sale.TotalPrice − acquisition.TotalPrice − Σ expense amounts
//
// Negative results (losses) are valid. No rounding is applied; inputs are
// assumed to share a consistent currency unit.
func CycleProfit(acquisition, sale model.Transaction, expenses []model.Expense) decimal.Decimal {
	return sale.TotalPrice.Sub(acquisition.TotalPrice).Sub(sumExpenses(expenses))
}

func sumExpenses(expenses []model.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
