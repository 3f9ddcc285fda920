// Package ledger provides the HTTP handlers and business logic for
// registering vehicles, recording transactions and expenses, and querying
// profit, period, and inventory reports.
//
// All monetary values use shopspring/decimal, never float64 for money.
package ledger

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/motorlot/dealer-engine/internal/metrics"
	"github.com/motorlot/dealer-engine/internal/model"
	"github.com/motorlot/dealer-engine/internal/profit"
	"github.com/motorlot/dealer-engine/internal/store"
	"github.com/motorlot/dealer-engine/internal/validate"
	"github.com/motorlot/dealer-engine/internal/vin"
)

// Service handles record-keeping and report operations. All profit numbers
// are recomputed from the ledger on every request; nothing derived is
// persisted.
type Service struct {
	store store.Store
	wsHub *WSHub // optional WebSocket hub for record-event broadcasts
}

// NewService creates a new ledger service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, hub *WSHub) *Service {
	return &Service{
		store: st,
		wsHub: hub,
	}
}

// --- Request types ---

// RegisterVehicleRequest is the JSON body for vehicle registration.
type RegisterVehicleRequest struct {
	ID    string `json:"id"`
	VIN   string `json:"vin"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"` // 0 → decoded from the VIN
}

// --- Vehicle handlers ---

// RegisterVehicle handles POST /api/v1/vehicles
func (s *Service) RegisterVehicle(w http.ResponseWriter, r *http.Request) {
	var req RegisterVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	parsed, err := vin.Parse(req.VIN)
	if err != nil {
		metrics.ValidationRejections.WithLabelValues("vehicle").Inc()
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	year := req.Year
	if year == 0 {
		year = parsed.ModelYear
	}

	vehicle := &model.Vehicle{
		ID:        req.ID,
		VIN:       parsed.Raw,
		Make:      req.Make,
		Model:     req.Model,
		Year:      year,
		CreatedAt: time.Now().UTC(),
	}
	if vehicle.ID == "" {
		vehicle.ID = uuid.New().String()
	}

	if err := s.store.CreateVehicle(r.Context(), vehicle); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	metrics.RecordsTotal.WithLabelValues("vehicle").Inc()
	slog.Info("vehicle registered",
		"id", vehicle.ID,
		"vin", vehicle.VIN,
		"year", vehicle.Year,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(vehicle)
}

// ListVehicles handles GET /api/v1/vehicles
func (s *Service) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.store.ListVehicles(r.Context())
	if err != nil {
		writeError(w, "failed to list vehicles", http.StatusInternalServerError)
		return
	}
	if vehicles == nil {
		vehicles = []model.Vehicle{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicles)
}

// GetVehicle handles GET /api/v1/vehicles/{vehicleID}
func (s *Service) GetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, err := s.store.GetVehicle(r.Context(), chi.URLParam(r, "vehicleID"))
	if err != nil {
		writeError(w, "vehicle not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicle)
}

// --- Record handlers ---

// RecordTransaction handles POST /api/v1/transactions
func (s *Service) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var tx model.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	// The engine treats TotalPrice as authoritative and never recomputes it;
	// deriving it from components when a client omits it is purely an
	// API-layer convenience.
	if tx.TotalPrice.IsZero() {
		tx.TotalPrice = deriveTotalPrice(tx)
	}

	if err := validate.Transaction(tx); err != nil {
		metrics.ValidationRejections.WithLabelValues("transaction").Inc()
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.InsertTransaction(r.Context(), &tx); err != nil {
		writeError(w, "failed to record transaction", http.StatusInternalServerError)
		return
	}

	metrics.RecordsTotal.WithLabelValues("transaction").Inc()
	slog.Info("transaction recorded",
		"id", tx.ID,
		"vehicle", tx.VehicleID,
		"direction", tx.Direction,
		"total_price", tx.TotalPrice.String(),
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:      "transaction_recorded",
			VehicleID: tx.VehicleID,
			Direction: tx.Direction,
			Amount:    tx.TotalPrice.String(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tx)
}

// ListTransactions handles GET /api/v1/transactions
// Optionally filtered by ?vehicle_id=<id>.
func (s *Service) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var (
		txs []model.Transaction
		err error
	)
	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
		txs, err = s.store.ListTransactionsByVehicle(r.Context(), vehicleID)
	} else {
		txs, err = s.store.ListTransactions(r.Context())
	}
	if err != nil {
		writeError(w, "failed to list transactions", http.StatusInternalServerError)
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(txs)
}

// RecordExpense handles POST /api/v1/expenses
func (s *Service) RecordExpense(w http.ResponseWriter, r *http.Request) {
	var e model.Expense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	if err := validate.Expense(e); err != nil {
		metrics.ValidationRejections.WithLabelValues("expense").Inc()
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.InsertExpense(r.Context(), &e); err != nil {
		writeError(w, "failed to record expense", http.StatusInternalServerError)
		return
	}

	metrics.RecordsTotal.WithLabelValues("expense").Inc()
	slog.Info("expense recorded",
		"id", e.ID,
		"vehicle", e.VehicleID,
		"category", e.Category,
		"amount", e.Amount.String(),
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:      "expense_recorded",
			VehicleID: e.VehicleID,
			Category:  e.Category,
			Amount:    e.Amount.String(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(e)
}

// ListExpenses handles GET /api/v1/expenses
// Optionally filtered by ?vehicle_id=<id>.
func (s *Service) ListExpenses(w http.ResponseWriter, r *http.Request) {
	var (
		exps []model.Expense
		err  error
	)
	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
		exps, err = s.store.ListExpensesByVehicle(r.Context(), vehicleID)
	} else {
		exps, err = s.store.ListExpenses(r.Context())
	}
	if err != nil {
		writeError(w, "failed to list expenses", http.StatusInternalServerError)
		return
	}
	if exps == nil {
		exps = []model.Expense{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(exps)
}

// --- Report handlers ---

// GetVehicleProfit handles GET /api/v1/vehicles/{vehicleID}/profit
// Recomputes ownership cycles from the ledger; `now` is captured once so the
// open-cycle expense cutoff is consistent within the request.
func (s *Service) GetVehicleProfit(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleID")
	ctx := r.Context()
	start := time.Now()

	txs, err := s.store.ListTransactionsByVehicle(ctx, vehicleID)
	if err != nil {
		writeError(w, "failed to load transactions", http.StatusInternalServerError)
		return
	}
	exps, err := s.store.ListExpensesByVehicle(ctx, vehicleID)
	if err != nil {
		writeError(w, "failed to load expenses", http.StatusInternalServerError)
		return
	}

	calc := profit.BuildCycles(vehicleID, txs, exps, time.Now().UTC())
	metrics.ReportLatency.WithLabelValues("vehicle_profit").Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(calc)
}

// GetPortfolio handles GET /api/v1/portfolio
// Aggregates profit and unrealized value across every vehicle in the ledger.
func (s *Service) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	vehicleIDs, err := s.store.ListVehicleIDs(ctx)
	if err != nil {
		writeError(w, "failed to list vehicles", http.StatusInternalServerError)
		return
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		writeError(w, "failed to load transactions", http.StatusInternalServerError)
		return
	}
	exps, err := s.store.ListExpenses(ctx)
	if err != nil {
		writeError(w, "failed to load expenses", http.StatusInternalServerError)
		return
	}

	portfolio := profit.AggregatePortfolio(ctx, vehicleIDs, txs, exps, time.Now().UTC())
	metrics.ReportLatency.WithLabelValues("portfolio").Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(portfolio)
}

// GetPeriodReport handles GET /api/v1/reports/period?start=YYYY-MM-DD&end=YYYY-MM-DD
// Both dates are inclusive; the end date covers its entire calendar day.
func (s *Service) GetPeriodReport(w http.ResponseWriter, r *http.Request) {
	startDate, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, "start must be a YYYY-MM-DD date", http.StatusBadRequest)
		return
	}
	endDate, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, "end must be a YYYY-MM-DD date", http.StatusBadRequest)
		return
	}
	if endDate.Before(startDate) {
		writeError(w, "end must not precede start", http.StatusBadRequest)
		return
	}
	// Widen the end bound to the last instant of its day.
	endDate = endDate.Add(24*time.Hour - time.Nanosecond)

	ctx := r.Context()
	start := time.Now()

	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		writeError(w, "failed to load transactions", http.StatusInternalServerError)
		return
	}
	exps, err := s.store.ListExpenses(ctx)
	if err != nil {
		writeError(w, "failed to load expenses", http.StatusInternalServerError)
		return
	}

	report := profit.PeriodProfit(txs, exps, startDate, endDate)
	metrics.ReportLatency.WithLabelValues("period").Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// GetInventoryReport handles GET /api/v1/reports/inventory
// Returns the current book value of every vehicle presently owned.
func (s *Service) GetInventoryReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		writeError(w, "failed to load transactions", http.StatusInternalServerError)
		return
	}
	exps, err := s.store.ListExpenses(ctx)
	if err != nil {
		writeError(w, "failed to load expenses", http.StatusInternalServerError)
		return
	}

	report := profit.InventoryValue(txs, exps, time.Now().UTC())
	metrics.ReportLatency.WithLabelValues("inventory").Observe(time.Since(start).Seconds())

	value, _ := report.TotalValue.Float64()
	metrics.InventoryValue.Set(value)
	metrics.OwnedVehicles.Set(float64(report.VehicleCount))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// deriveTotalPrice computes base + Σtaxes + Σfees − discount.
func deriveTotalPrice(tx model.Transaction) decimal.Decimal {
	total := tx.BasePrice
	for _, item := range tx.Taxes {
		total = total.Add(item.Amount)
	}
	for _, item := range tx.Fees {
		total = total.Add(item.Amount)
	}
	return total.Sub(tx.Discount)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
