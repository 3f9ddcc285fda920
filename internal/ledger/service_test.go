package ledger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/motorlot/dealer-engine/internal/ledger"
	"github.com/motorlot/dealer-engine/internal/model"
	"github.com/motorlot/dealer-engine/internal/store"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

// newTestEnv creates a test Service with in-memory store and chi router.
func newTestEnv(t *testing.T) (*store.MemoryStore, chi.Router) {
	t.Helper()
	ms := store.NewMemoryStore()
	svc := ledger.NewService(ms, nil)

	r := chi.NewRouter()
	r.Post("/api/v1/vehicles", svc.RegisterVehicle)
	r.Get("/api/v1/vehicles", svc.ListVehicles)
	r.Get("/api/v1/vehicles/{vehicleID}", svc.GetVehicle)
	r.Get("/api/v1/vehicles/{vehicleID}/profit", svc.GetVehicleProfit)
	r.Post("/api/v1/transactions", svc.RecordTransaction)
	r.Get("/api/v1/transactions", svc.ListTransactions)
	r.Post("/api/v1/expenses", svc.RecordExpense)
	r.Get("/api/v1/expenses", svc.ListExpenses)
	r.Get("/api/v1/portfolio", svc.GetPortfolio)
	r.Get("/api/v1/reports/period", svc.GetPeriodReport)
	r.Get("/api/v1/reports/inventory", svc.GetInventoryReport)

	return ms, r
}

func doJSON(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func recordTx(t *testing.T, router chi.Router, vehicle, direction string, total float64, date time.Time) {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/v1/transactions", model.Transaction{
		VehicleID:  vehicle,
		Direction:  direction,
		Date:       date,
		BasePrice:  d(total),
		TotalPrice: d(total),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("record transaction failed: %d %s", w.Code, w.Body.String())
	}
}

func recordExpense(t *testing.T, router chi.Router, vehicle string, amount float64, date time.Time) {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/v1/expenses", model.Expense{
		VehicleID: vehicle,
		Category:  "repair",
		Amount:    d(amount),
		Date:      date,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("record expense failed: %d %s", w.Code, w.Body.String())
	}
}

// --- Vehicle registration ---

func TestRegisterVehicle_Valid(t *testing.T) {
	_, router := newTestEnv(t)

	w := doJSON(t, router, "POST", "/api/v1/vehicles", ledger.RegisterVehicleRequest{
		VIN:   "1HGCM82633A004352",
		Make:  "Honda",
		Model: "Accord",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var v model.Vehicle
	json.Unmarshal(w.Body.Bytes(), &v)

	if v.ID == "" {
		t.Error("expected generated vehicle id")
	}
	if v.Year != 2003 {
		t.Errorf("expected year decoded from VIN (2003), got %d", v.Year)
	}
}

func TestRegisterVehicle_InvalidVIN(t *testing.T) {
	_, router := newTestEnv(t)

	w := doJSON(t, router, "POST", "/api/v1/vehicles", ledger.RegisterVehicleRequest{
		VIN: "NOT-A-VIN",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid VIN, got %d", w.Code)
	}
}

func TestRegisterVehicle_DuplicateVIN(t *testing.T) {
	_, router := newTestEnv(t)

	req := ledger.RegisterVehicleRequest{VIN: "1HGCM82633A004352", Make: "Honda"}
	if w := doJSON(t, router, "POST", "/api/v1/vehicles", req); w.Code != http.StatusCreated {
		t.Fatalf("first registration failed: %d", w.Code)
	}
	if w := doJSON(t, router, "POST", "/api/v1/vehicles", req); w.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate VIN, got %d", w.Code)
	}
}

func TestGetVehicle(t *testing.T) {
	_, router := newTestEnv(t)

	w := doJSON(t, router, "POST", "/api/v1/vehicles", ledger.RegisterVehicleRequest{
		ID:  "v1",
		VIN: "1HGCM82633A004352",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("registration failed: %d", w.Code)
	}

	if w := doJSON(t, router, "GET", "/api/v1/vehicles/v1", nil); w.Code != http.StatusOK {
		t.Errorf("expected 200 for known vehicle, got %d", w.Code)
	}
	if w := doJSON(t, router, "GET", "/api/v1/vehicles/ghost", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown vehicle, got %d", w.Code)
	}
}

// --- Record keeping ---

func TestRecordTransaction_Valid(t *testing.T) {
	ms, router := newTestEnv(t)

	recordTx(t, router, "v1", model.DirectionIn, 10000, day(2024, 1, 1))

	txs, _ := ms.ListTransactions(context.Background())
	if len(txs) != 1 {
		t.Fatalf("expected 1 stored transaction, got %d", len(txs))
	}
	if txs[0].ID == "" {
		t.Error("expected generated transaction id")
	}
}

func TestRecordTransaction_DerivesTotalPrice(t *testing.T) {
	_, router := newTestEnv(t)

	w := doJSON(t, router, "POST", "/api/v1/transactions", model.Transaction{
		VehicleID: "v1",
		Direction: model.DirectionIn,
		Date:      day(2024, 1, 1),
		BasePrice: d(10000),
		Taxes:     []model.LineItem{{Name: "vat", Amount: d(2000)}},
		Fees:      []model.LineItem{{Name: "doc", Amount: d(150)}},
		Discount:  d(500),
		// TotalPrice omitted → derived by the API layer
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var tx model.Transaction
	json.Unmarshal(w.Body.Bytes(), &tx)

	if !tx.TotalPrice.Equal(d(11650)) {
		t.Errorf("expected derived total 11650, got %s", tx.TotalPrice)
	}
}

func TestRecordTransaction_InvalidDirection(t *testing.T) {
	_, router := newTestEnv(t)

	w := doJSON(t, router, "POST", "/api/v1/transactions", model.Transaction{
		VehicleID:  "v1",
		Direction:  "HOLD",
		Date:       day(2024, 1, 1),
		TotalPrice: d(10000),
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid direction, got %d", w.Code)
	}
}

func TestRecordExpense_NegativeAmount(t *testing.T) {
	_, router := newTestEnv(t)

	w := doJSON(t, router, "POST", "/api/v1/expenses", model.Expense{
		VehicleID: "v1",
		Category:  "repair",
		Amount:    d(-500),
		Date:      day(2024, 1, 1),
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative amount, got %d", w.Code)
	}
}

func TestListTransactions_FilterByVehicle(t *testing.T) {
	_, router := newTestEnv(t)
	recordTx(t, router, "v1", model.DirectionIn, 10000, day(2024, 1, 1))
	recordTx(t, router, "v2", model.DirectionIn, 8000, day(2024, 1, 2))

	w := doJSON(t, router, "GET", "/api/v1/transactions?vehicle_id=v1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var txs []model.Transaction
	json.Unmarshal(w.Body.Bytes(), &txs)
	if len(txs) != 1 || txs[0].VehicleID != "v1" {
		t.Errorf("expected only v1 transactions, got %d", len(txs))
	}
}

func TestListExpenses_EmptyIsArray(t *testing.T) {
	_, router := newTestEnv(t)

	w := doJSON(t, router, "GET", "/api/v1/expenses", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", body)
	}
}

// --- Profit and report endpoints ---

func TestGetVehicleProfit_CompleteCycle(t *testing.T) {
	_, router := newTestEnv(t)
	recordTx(t, router, "v1", model.DirectionIn, 10000, day(2024, 1, 1))
	recordTx(t, router, "v1", model.DirectionOut, 15000, day(2024, 2, 1))
	recordExpense(t, router, "v1", 500, day(2024, 1, 15))

	w := doJSON(t, router, "GET", "/api/v1/vehicles/v1/profit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var calc model.ProfitCalculation
	json.Unmarshal(w.Body.Bytes(), &calc)

	if calc.VehicleID != "v1" {
		t.Errorf("expected vehicle v1, got %s", calc.VehicleID)
	}
	if len(calc.Cycles) != 1 || !calc.Cycles[0].IsComplete {
		t.Fatalf("expected one complete cycle, got %+v", calc.Cycles)
	}
	if !calc.TotalProfit.Equal(d(4500)) {
		t.Errorf("expected total profit 4500, got %s", calc.TotalProfit)
	}
}

func TestGetVehicleProfit_NoRecords(t *testing.T) {
	_, router := newTestEnv(t)

	w := doJSON(t, router, "GET", "/api/v1/vehicles/ghost/profit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown vehicle, got %d", w.Code)
	}

	var calc model.ProfitCalculation
	json.Unmarshal(w.Body.Bytes(), &calc)

	if len(calc.Cycles) != 0 || !calc.TotalProfit.IsZero() || !calc.UnrealizedValue.IsZero() {
		t.Error("unknown vehicle should yield an empty, all-zero result")
	}
}

func TestGetPortfolio_SumsVehicles(t *testing.T) {
	_, router := newTestEnv(t)
	recordTx(t, router, "v1", model.DirectionIn, 10000, day(2024, 1, 1))
	recordTx(t, router, "v1", model.DirectionOut, 15000, day(2024, 2, 1))
	recordTx(t, router, "v2", model.DirectionIn, 8000, day(2024, 1, 10))
	recordExpense(t, router, "v2", 300, day(2024, 2, 15))

	w := doJSON(t, router, "GET", "/api/v1/portfolio", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var portfolio model.PortfolioProfit
	json.Unmarshal(w.Body.Bytes(), &portfolio)

	if len(portfolio.VehicleProfits) != 2 {
		t.Fatalf("expected 2 vehicle results, got %d", len(portfolio.VehicleProfits))
	}
	if !portfolio.TotalProfit.Equal(d(5000)) {
		t.Errorf("expected total profit 5000, got %s", portfolio.TotalProfit)
	}
	if !portfolio.TotalUnrealizedValue.Equal(d(8300)) {
		t.Errorf("expected unrealized 8300, got %s", portfolio.TotalUnrealizedValue)
	}
}

func TestGetPeriodReport_Basic(t *testing.T) {
	_, router := newTestEnv(t)
	recordTx(t, router, "v1", model.DirectionIn, 10000, day(2023, 11, 1)) // before window
	recordTx(t, router, "v1", model.DirectionOut, 15000, day(2024, 1, 20))
	recordExpense(t, router, "v1", 500, day(2024, 1, 31)) // end date, inclusive

	w := doJSON(t, router, "GET", "/api/v1/reports/period?start=2024-01-01&end=2024-01-31", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var report model.PeriodProfitReport
	json.Unmarshal(w.Body.Bytes(), &report)

	if !report.Revenue.Equal(d(15000)) {
		t.Errorf("expected revenue 15000, got %s", report.Revenue)
	}
	if !report.Costs.IsZero() {
		t.Errorf("prior-period acquisition must not count, got costs %s", report.Costs)
	}
	if !report.Expenses.Equal(d(500)) {
		t.Errorf("end-date expense should be included, got %s", report.Expenses)
	}
	if !report.NetProfit.Equal(d(14500)) {
		t.Errorf("expected net profit 14500, got %s", report.NetProfit)
	}
}

func TestGetPeriodReport_BadParams(t *testing.T) {
	_, router := newTestEnv(t)

	cases := []string{
		"/api/v1/reports/period",
		"/api/v1/reports/period?start=2024-01-01",
		"/api/v1/reports/period?start=notadate&end=2024-01-31",
		"/api/v1/reports/period?start=2024-02-01&end=2024-01-01",
	}
	for _, path := range cases {
		if w := doJSON(t, router, "GET", path, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestGetInventoryReport_OwnedOnly(t *testing.T) {
	_, router := newTestEnv(t)
	recordTx(t, router, "v1", model.DirectionIn, 10000, day(2024, 1, 1))
	recordTx(t, router, "v2", model.DirectionIn, 8000, day(2024, 1, 5))
	recordTx(t, router, "v2", model.DirectionOut, 9000, day(2024, 2, 1))
	recordExpense(t, router, "v1", 500, day(2024, 1, 15))

	w := doJSON(t, router, "GET", "/api/v1/reports/inventory", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var report model.InventoryValueReport
	json.Unmarshal(w.Body.Bytes(), &report)

	if report.VehicleCount != 1 {
		t.Fatalf("expected 1 owned vehicle, got %d", report.VehicleCount)
	}
	if !report.TotalValue.Equal(d(10500)) {
		t.Errorf("expected total value 10500, got %s", report.TotalValue)
	}
	if report.AsOf.IsZero() {
		t.Error("expected as_of to be set")
	}
}

func TestReports_Idempotent(t *testing.T) {
	_, router := newTestEnv(t)
	recordTx(t, router, "v1", model.DirectionIn, 10000, day(2024, 1, 1))
	recordTx(t, router, "v1", model.DirectionOut, 15000, day(2024, 2, 1))

	first := doJSON(t, router, "GET", "/api/v1/portfolio", nil)
	second := doJSON(t, router, "GET", "/api/v1/portfolio", nil)

	var a, b model.PortfolioProfit
	json.Unmarshal(first.Body.Bytes(), &a)
	json.Unmarshal(second.Body.Bytes(), &b)

	if !a.TotalProfit.Equal(b.TotalProfit) || !a.TotalUnrealizedValue.Equal(b.TotalUnrealizedValue) {
		t.Errorf("repeated reads over closed cycles must agree: %s/%s vs %s/%s",
			a.TotalProfit, a.TotalUnrealizedValue, b.TotalProfit, b.TotalUnrealizedValue)
	}
}

func TestGetVehicleProfit_ManyVehicles(t *testing.T) {
	_, router := newTestEnv(t)
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("v%d", i)
		recordTx(t, router, id, model.DirectionIn, 1000, day(2024, 1, 1+i))
		recordTx(t, router, id, model.DirectionOut, 1500, day(2024, 2, 1+i))
	}

	w := doJSON(t, router, "GET", "/api/v1/portfolio", nil)
	var portfolio model.PortfolioProfit
	json.Unmarshal(w.Body.Bytes(), &portfolio)

	if len(portfolio.VehicleProfits) != 10 {
		t.Fatalf("expected 10 vehicle results, got %d", len(portfolio.VehicleProfits))
	}
	if !portfolio.TotalProfit.Equal(d(5000)) {
		t.Errorf("expected total profit 5000, got %s", portfolio.TotalProfit)
	}
}
