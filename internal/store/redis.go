package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/motorlot/dealer-engine/internal/model"
)

// CachedStore wraps a primary Store with a Redis read-through cache for the
// per-vehicle record lists the profit endpoints hit on every request.
// Writes go to the primary store and invalidate the affected keys; reads
// check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) CreateVehicle(ctx context.Context, v *model.Vehicle) error {
	if err := s.primary.CreateVehicle(ctx, v); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		s.rdb.Set(ctx, vehicleKey(v.ID), data, s.ttl)
	}
	return nil
}

func (s *CachedStore) InsertTransaction(ctx context.Context, tx *model.Transaction) error {
	if err := s.primary.InsertTransaction(ctx, tx); err != nil {
		return err
	}
	// Invalidate; next read re-populates.
	s.rdb.Del(ctx, vehicleTxKey(tx.VehicleID))
	return nil
}

func (s *CachedStore) InsertExpense(ctx context.Context, e *model.Expense) error {
	if err := s.primary.InsertExpense(ctx, e); err != nil {
		return err
	}
	if e.VehicleID != "" {
		s.rdb.Del(ctx, vehicleExpKey(e.VehicleID))
	}
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetVehicle(ctx context.Context, id string) (*model.Vehicle, error) {
	data, err := s.rdb.Get(ctx, vehicleKey(id)).Bytes()
	if err == nil {
		var v model.Vehicle
		if json.Unmarshal(data, &v) == nil {
			return &v, nil
		}
	}

	v, err := s.primary.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(v); err == nil {
		s.rdb.Set(ctx, vehicleKey(id), data, s.ttl)
	}
	return v, nil
}

func (s *CachedStore) ListTransactionsByVehicle(ctx context.Context, vehicleID string) ([]model.Transaction, error) {
	data, err := s.rdb.Get(ctx, vehicleTxKey(vehicleID)).Bytes()
	if err == nil {
		var txs []model.Transaction
		if json.Unmarshal(data, &txs) == nil {
			return txs, nil
		}
	}

	txs, err := s.primary.ListTransactionsByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(txs); err == nil {
		s.rdb.Set(ctx, vehicleTxKey(vehicleID), data, s.ttl)
	}
	return txs, nil
}

func (s *CachedStore) ListExpensesByVehicle(ctx context.Context, vehicleID string) ([]model.Expense, error) {
	data, err := s.rdb.Get(ctx, vehicleExpKey(vehicleID)).Bytes()
	if err == nil {
		var exps []model.Expense
		if json.Unmarshal(data, &exps) == nil {
			return exps, nil
		}
	}

	exps, err := s.primary.ListExpensesByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(exps); err == nil {
		s.rdb.Set(ctx, vehicleExpKey(vehicleID), data, s.ttl)
	}
	return exps, nil
}

// --- Passthrough (full-fleet scans are not cached) ---

func (s *CachedStore) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	return s.primary.ListVehicles(ctx)
}

func (s *CachedStore) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	return s.primary.ListTransactions(ctx)
}

func (s *CachedStore) ListVehicleIDs(ctx context.Context) ([]string, error) {
	return s.primary.ListVehicleIDs(ctx)
}

func (s *CachedStore) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	return s.primary.ListExpenses(ctx)
}

func vehicleKey(id string) string    { return fmt.Sprintf("vehicle:%s", id) }
func vehicleTxKey(id string) string  { return fmt.Sprintf("vehicle:%s:transactions", id) }
func vehicleExpKey(id string) string { return fmt.Sprintf("vehicle:%s:expenses", id) }
