package profit

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/motorlot/dealer-engine/internal/model"
)

// PeriodProfit computes a cash-basis P&L over [start, end], both bounds
// inclusive. Transactions and expenses are filtered independently by date;
// no cycle matching happens. A sale inside the window counts fully as
// revenue even when the vehicle was acquired in an earlier period. This is
// a deliberately different view from the matched-cycle numbers and the two
// must not be interchanged.
func PeriodProfit(transactions []model.Transaction, expenses []model.Expense, start, end time.Time) model.PeriodProfitReport {
	report := model.PeriodProfitReport{
		Revenue:  decimal.Zero,
		Costs:    decimal.Zero,
		Expenses: decimal.Zero,
	}

	for _, tx := range transactions {
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		switch tx.Direction {
		case model.DirectionOut:
			report.Revenue = report.Revenue.Add(tx.TotalPrice)
			report.TransactionCount.Out++
		case model.DirectionIn:
			report.Costs = report.Costs.Add(tx.TotalPrice)
			report.TransactionCount.In++
		}
	}

	for _, e := range expenses {
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		report.Expenses = report.Expenses.Add(e.Amount)
	}

	report.NetProfit = report.Revenue.Sub(report.Costs).Sub(report.Expenses)
	return report
}
