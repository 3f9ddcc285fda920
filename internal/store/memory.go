package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/motorlot/dealer-engine/internal/model"
)

// MemoryStore implements Store with in-memory slices and maps. Used for
// testing and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu           sync.RWMutex
	vehicles     map[string]*model.Vehicle
	transactions []model.Transaction
	expenses     []model.Expense
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vehicles: make(map[string]*model.Vehicle),
	}
}

func (s *MemoryStore) CreateVehicle(_ context.Context, v *model.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vehicles[v.ID]; exists {
		return fmt.Errorf("vehicle %s already exists", v.ID)
	}
	for _, existing := range s.vehicles {
		if existing.VIN == v.VIN {
			return fmt.Errorf("vehicle with VIN %s already exists", v.VIN)
		}
	}

	// Store a copy to avoid external mutation.
	cp := *v
	s.vehicles[v.ID] = &cp
	return nil
}

func (s *MemoryStore) GetVehicle(_ context.Context, id string) (*model.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("vehicle %s not found", id)
	}
	cp := *v
	return &cp, nil
}

func (s *MemoryStore) ListVehicles(_ context.Context) ([]model.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vehicles := make([]model.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		vehicles = append(vehicles, *v)
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })
	return vehicles, nil
}

func (s *MemoryStore) InsertTransaction(_ context.Context, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = append(s.transactions, *tx)
	return nil
}

func (s *MemoryStore) ListTransactions(_ context.Context) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := make([]model.Transaction, len(s.transactions))
	copy(txs, s.transactions)
	return txs, nil
}

func (s *MemoryStore) ListTransactionsByVehicle(_ context.Context, vehicleID string) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Transaction
	for _, tx := range s.transactions {
		if tx.VehicleID == vehicleID {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (s *MemoryStore) ListVehicleIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var ids []string
	for _, tx := range s.transactions {
		if !seen[tx.VehicleID] {
			seen[tx.VehicleID] = true
			ids = append(ids, tx.VehicleID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) InsertExpense(_ context.Context, e *model.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expenses = append(s.expenses, *e)
	return nil
}

func (s *MemoryStore) ListExpenses(_ context.Context) ([]model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exps := make([]model.Expense, len(s.expenses))
	copy(exps, s.expenses)
	return exps, nil
}

func (s *MemoryStore) ListExpensesByVehicle(_ context.Context, vehicleID string) ([]model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Expense
	for _, e := range s.expenses {
		if e.VehicleID == vehicleID {
			result = append(result, e)
		}
	}
	return result, nil
}
