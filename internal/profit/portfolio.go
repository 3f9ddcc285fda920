package profit

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/motorlot/dealer-engine/internal/model"
)

// AggregatePortfolio runs BuildCycles for each vehicle and sums realized
// profit and unrealized value across the fleet.
//
// Each per-vehicle computation is independent and side-effect-free, so they
// run concurrently. Results land in a slice indexed by vehicle position, so
// VehicleProfits preserves the order of vehicleIDs regardless of scheduling.
// The same captured `now` is shared by every vehicle for a consistent
// open-cycle cutoff.
func AggregatePortfolio(ctx context.Context, vehicleIDs []string, transactions []model.Transaction, expenses []model.Expense, now time.Time) model.PortfolioProfit {
	portfolio := model.PortfolioProfit{
		TotalProfit:          decimal.Zero,
		TotalUnrealizedValue: decimal.Zero,
		VehicleProfits:       make([]model.ProfitCalculation, len(vehicleIDs)),
	}

	g, _ := errgroup.WithContext(ctx)
	for i, id := range vehicleIDs {
		i, id := i, id
		g.Go(func() error {
			txs, exps := filterByVehicle(id, transactions, expenses)
			portfolio.VehicleProfits[i] = BuildCycles(id, txs, exps, now)
			return nil
		})
	}
	g.Wait() // workers never return errors; Wait only fences completion

	for _, vp := range portfolio.VehicleProfits {
		portfolio.TotalProfit = portfolio.TotalProfit.Add(vp.TotalProfit)
		portfolio.TotalUnrealizedValue = portfolio.TotalUnrealizedValue.Add(vp.UnrealizedValue)
	}

	return portfolio
}

// filterByVehicle restricts full-fleet collections to one vehicle. Expenses
// with no vehicle reference never match and so never attribute per-vehicle.
func filterByVehicle(vehicleID string, transactions []model.Transaction, expenses []model.Expense) ([]model.Transaction, []model.Expense) {
	var txs []model.Transaction
	for _, t := range transactions {
		if t.VehicleID == vehicleID {
			txs = append(txs, t)
		}
	}
	var exps []model.Expense
	for _, e := range expenses {
		if e.VehicleID != "" && e.VehicleID == vehicleID {
			exps = append(exps, e)
		}
	}
	return txs, exps
}
