package profit

import (
	"testing"
	"time"

	"github.com/motorlot/dealer-engine/internal/model"
)

func TestPeriodProfit_BasicWindow(t *testing.T) {
	txs := []model.Transaction{
		txIn("t1", "v1", 10000, day(2024, 1, 5)),
		txOut("t2", "v1", 15000, day(2024, 1, 20)),
		txIn("t3", "v2", 8000, day(2024, 2, 10)), // outside window
	}
	exps := []model.Expense{
		expense("e1", "v1", 500, day(2024, 1, 10)),
		expense("e2", "v2", 300, day(2024, 3, 1)), // outside window
	}

	report := PeriodProfit(txs, exps, day(2024, 1, 1), day(2024, 1, 31))

	if !report.Revenue.Equal(d(15000)) {
		t.Errorf("expected revenue 15000, got %s", report.Revenue)
	}
	if !report.Costs.Equal(d(10000)) {
		t.Errorf("expected costs 10000, got %s", report.Costs)
	}
	if !report.Expenses.Equal(d(500)) {
		t.Errorf("expected expenses 500, got %s", report.Expenses)
	}
	if !report.NetProfit.Equal(d(4500)) {
		t.Errorf("expected net profit 4500, got %s", report.NetProfit)
	}
	if report.TransactionCount.In != 1 || report.TransactionCount.Out != 1 {
		t.Errorf("expected counts in=1 out=1, got in=%d out=%d",
			report.TransactionCount.In, report.TransactionCount.Out)
	}
}

func TestPeriodProfit_CycleAgnostic(t *testing.T) {
	// Vehicle acquired before the window, sold inside it: the sale is pure
	// revenue with no offsetting cost in this window.
	txs := []model.Transaction{
		txIn("t1", "v1", 10000, day(2023, 11, 1)),
		txOut("t2", "v1", 15000, day(2024, 1, 20)),
	}

	report := PeriodProfit(txs, nil, day(2024, 1, 1), day(2024, 1, 31))

	if !report.Revenue.Equal(d(15000)) {
		t.Errorf("expected revenue 15000, got %s", report.Revenue)
	}
	if !report.Costs.IsZero() {
		t.Errorf("prior-period acquisition must not count as cost, got %s", report.Costs)
	}
	if !report.NetProfit.Equal(d(15000)) {
		t.Errorf("expected net profit 15000, got %s", report.NetProfit)
	}
	if report.TransactionCount.In != 0 {
		t.Errorf("expected in count 0, got %d", report.TransactionCount.In)
	}
}

func TestPeriodProfit_BoundsInclusive(t *testing.T) {
	start := day(2024, 1, 1)
	end := day(2024, 1, 31)
	txs := []model.Transaction{
		txOut("t1", "v1", 100, start),
		txOut("t2", "v2", 200, end),
		txOut("t3", "v3", 400, end.Add(time.Nanosecond)), // just past the bound
	}

	report := PeriodProfit(txs, nil, start, end)

	if !report.Revenue.Equal(d(300)) {
		t.Errorf("both boundary dates should be included, got revenue %s", report.Revenue)
	}
	if report.TransactionCount.Out != 2 {
		t.Errorf("expected out count 2, got %d", report.TransactionCount.Out)
	}
}

func TestPeriodProfit_EmptyWindow(t *testing.T) {
	report := PeriodProfit(nil, nil, day(2024, 1, 1), day(2024, 1, 31))

	if !report.Revenue.IsZero() || !report.Costs.IsZero() ||
		!report.Expenses.IsZero() || !report.NetProfit.IsZero() {
		t.Error("empty input should yield an all-zero report")
	}
}

func TestPeriodProfit_NetLoss(t *testing.T) {
	txs := []model.Transaction{
		txIn("t1", "v1", 10000, day(2024, 1, 5)),
	}
	exps := []model.Expense{expense("e1", "v1", 500, day(2024, 1, 10))}

	report := PeriodProfit(txs, exps, day(2024, 1, 1), day(2024, 1, 31))

	if !report.NetProfit.Equal(d(-10500)) {
		t.Errorf("expected net profit -10500, got %s", report.NetProfit)
	}
}
