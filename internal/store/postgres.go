package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/motorlot/dealer-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL. All monetary values are
// stored as NUMERIC for exact decimal precision; tax/fee/payment line items
// are stored as JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateVehicle(ctx context.Context, v *model.Vehicle) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO vehicles (id, vin, make, model, year, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		v.ID, v.VIN, v.Make, v.Model, v.Year, v.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetVehicle(ctx context.Context, id string) (*model.Vehicle, error) {
	var v model.Vehicle
	err := s.pool.QueryRow(ctx,
		`SELECT id, vin, make, model, year, created_at
		 FROM vehicles WHERE id = $1`, id).
		Scan(&v.ID, &v.VIN, &v.Make, &v.Model, &v.Year, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get vehicle %s: %w", id, err)
	}
	return &v, nil
}

func (s *PostgresStore) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, vin, make, model, year, created_at
		 FROM vehicles ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []model.Vehicle
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.VIN, &v.Make, &v.Model, &v.Year, &v.CreatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (s *PostgresStore) InsertTransaction(ctx context.Context, tx *model.Transaction) error {
	taxes, err := json.Marshal(tx.Taxes)
	if err != nil {
		return fmt.Errorf("marshal taxes: %w", err)
	}
	fees, err := json.Marshal(tx.Fees)
	if err != nil {
		return fmt.Errorf("marshal fees: %w", err)
	}
	payments, err := json.Marshal(tx.Payments)
	if err != nil {
		return fmt.Errorf("marshal payments: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO transactions
		   (id, vehicle_id, direction, date, base_price, taxes, fees,
		    discount, total_price, counterparty_id, payments, notes)
		 VALUES ($1, $2, $3, $4, $5::NUMERIC, $6::JSONB, $7::JSONB,
		         $8::NUMERIC, $9::NUMERIC, $10, $11::JSONB, $12)`,
		tx.ID, tx.VehicleID, tx.Direction, tx.Date,
		tx.BasePrice.String(), taxes, fees,
		tx.Discount.String(), tx.TotalPrice.String(),
		tx.CounterpartyID, payments, tx.Notes,
	)
	return err
}

const transactionColumns = `id, vehicle_id, direction, date,
	base_price::TEXT, taxes, fees, discount::TEXT, total_price::TEXT,
	counterparty_id, payments, notes`

func (s *PostgresStore) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (s *PostgresStore) ListTransactionsByVehicle(ctx context.Context, vehicleID string) ([]model.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE vehicle_id = $1 ORDER BY date`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (s *PostgresStore) ListVehicleIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT vehicle_id FROM transactions ORDER BY vehicle_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) InsertExpense(ctx context.Context, e *model.Expense) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO expenses (id, vehicle_id, category, amount, date, payee_id)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5, $6)`,
		e.ID, e.VehicleID, e.Category, e.Amount.String(), e.Date, e.PayeeID,
	)
	return err
}

func (s *PostgresStore) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, vehicle_id, category, amount::TEXT, date, payee_id
		 FROM expenses ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExpenses(rows)
}

func (s *PostgresStore) ListExpensesByVehicle(ctx context.Context, vehicleID string) ([]model.Expense, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, vehicle_id, category, amount::TEXT, date, payee_id
		 FROM expenses WHERE vehicle_id = $1 ORDER BY date`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// pgxRows is the subset of pgx.Rows the scan helpers need.
type pgxRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanTransactions(rows pgxRows) ([]model.Transaction, error) {
	var txs []model.Transaction
	for rows.Next() {
		var tx model.Transaction
		var baseS, discountS, totalS string
		var taxesB, feesB, paymentsB []byte

		if err := rows.Scan(&tx.ID, &tx.VehicleID, &tx.Direction, &tx.Date,
			&baseS, &taxesB, &feesB, &discountS, &totalS,
			&tx.CounterpartyID, &paymentsB, &tx.Notes); err != nil {
			return nil, err
		}

		tx.BasePrice, _ = decimal.NewFromString(baseS)
		tx.Discount, _ = decimal.NewFromString(discountS)
		tx.TotalPrice, _ = decimal.NewFromString(totalS)
		if len(taxesB) > 0 {
			json.Unmarshal(taxesB, &tx.Taxes)
		}
		if len(feesB) > 0 {
			json.Unmarshal(feesB, &tx.Fees)
		}
		if len(paymentsB) > 0 {
			json.Unmarshal(paymentsB, &tx.Payments)
		}

		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func scanExpenses(rows pgxRows) ([]model.Expense, error) {
	var exps []model.Expense
	for rows.Next() {
		var e model.Expense
		var amountS string

		if err := rows.Scan(&e.ID, &e.VehicleID, &e.Category,
			&amountS, &e.Date, &e.PayeeID); err != nil {
			return nil, err
		}

		e.Amount, _ = decimal.NewFromString(amountS)
		exps = append(exps, e)
	}
	return exps, rows.Err()
}
