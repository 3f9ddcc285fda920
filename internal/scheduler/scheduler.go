// Package scheduler periodically recomputes the fleet inventory valuation so
// the Prometheus gauges stay fresh between report requests. Nothing derived
// is persisted; each run recomputes from the ledger.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/motorlot/dealer-engine/internal/metrics"
	"github.com/motorlot/dealer-engine/internal/profit"
	"github.com/motorlot/dealer-engine/internal/store"
)

// Scheduler manages the periodic inventory refresh.
type Scheduler struct {
	cron  *cron.Cron
	store store.Store
	spec  string
}

// New creates a scheduler that refreshes inventory gauges on the given cron
// spec (robfig/cron syntax, "@every 5m" style descriptors included).
func New(st store.Store, spec string) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		store: st,
		spec:  spec,
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.refreshInventory); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("inventory refresh scheduled", "spec", s.spec)
	return nil
}

// Stop stops the cron loop; running jobs complete.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) refreshInventory() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		slog.Error("inventory refresh: load transactions failed", "err", err)
		return
	}
	exps, err := s.store.ListExpenses(ctx)
	if err != nil {
		slog.Error("inventory refresh: load expenses failed", "err", err)
		return
	}

	report := profit.InventoryValue(txs, exps, time.Now().UTC())

	value, _ := report.TotalValue.Float64()
	metrics.InventoryValue.Set(value)
	metrics.OwnedVehicles.Set(float64(report.VehicleCount))

	slog.Info("inventory valuation refreshed",
		"total_value", report.TotalValue.String(),
		"vehicles", report.VehicleCount,
	)
}
