package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/motorlot/dealer-engine/internal/model"
)

// MongoStore implements Store on MongoDB, the document store the
// surrounding dealership application runs on. Decimals are persisted as
// strings and parsed on read, mirroring the NUMERIC-as-TEXT convention of
// the Postgres backend.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore connects to MongoDB, verifies the connection, and returns a
// store bound to the given database.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{db: client.Database(dbName)}, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// --- BSON document shapes (decimals as strings) ---

type lineItemDoc struct {
	Name       string `bson:"name"`
	Amount     string `bson:"amount"`
	Percentage string `bson:"percentage,omitempty"`
}

type paymentDoc struct {
	Method string    `bson:"method"`
	Amount string    `bson:"amount"`
	Date   time.Time `bson:"date"`
}

type transactionDoc struct {
	ID             string        `bson:"_id"`
	VehicleID      string        `bson:"vehicle_id"`
	Direction      string        `bson:"direction"`
	Date           time.Time     `bson:"date"`
	BasePrice      string        `bson:"base_price"`
	Taxes          []lineItemDoc `bson:"taxes,omitempty"`
	Fees           []lineItemDoc `bson:"fees,omitempty"`
	Discount       string        `bson:"discount"`
	TotalPrice     string        `bson:"total_price"`
	CounterpartyID string        `bson:"counterparty_id,omitempty"`
	Payments       []paymentDoc  `bson:"payments,omitempty"`
	Notes          string        `bson:"notes,omitempty"`
}

type expenseDoc struct {
	ID        string    `bson:"_id"`
	VehicleID string    `bson:"vehicle_id,omitempty"`
	Category  string    `bson:"category"`
	Amount    string    `bson:"amount"`
	Date      time.Time `bson:"date"`
	PayeeID   string    `bson:"payee_id,omitempty"`
}

type vehicleDoc struct {
	ID        string    `bson:"_id"`
	VIN       string    `bson:"vin"`
	Make      string    `bson:"make"`
	Model     string    `bson:"model"`
	Year      int       `bson:"year"`
	CreatedAt time.Time `bson:"created_at"`
}

func (s *MongoStore) CreateVehicle(ctx context.Context, v *model.Vehicle) error {
	doc := vehicleDoc{
		ID: v.ID, VIN: v.VIN, Make: v.Make, Model: v.Model,
		Year: v.Year, CreatedAt: v.CreatedAt,
	}
	if _, err := s.db.Collection("vehicles").InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

func (s *MongoStore) GetVehicle(ctx context.Context, id string) (*model.Vehicle, error) {
	var doc vehicleDoc
	err := s.db.Collection("vehicles").FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("get vehicle %s: %w", id, err)
	}
	v := model.Vehicle{
		ID: doc.ID, VIN: doc.VIN, Make: doc.Make, Model: doc.Model,
		Year: doc.Year, CreatedAt: doc.CreatedAt,
	}
	return &v, nil
}

func (s *MongoStore) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	cur, err := s.db.Collection("vehicles").Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var vehicles []model.Vehicle
	for cur.Next(ctx) {
		var doc vehicleDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, model.Vehicle{
			ID: doc.ID, VIN: doc.VIN, Make: doc.Make, Model: doc.Model,
			Year: doc.Year, CreatedAt: doc.CreatedAt,
		})
	}
	return vehicles, cur.Err()
}

func (s *MongoStore) InsertTransaction(ctx context.Context, tx *model.Transaction) error {
	if _, err := s.db.Collection("transactions").InsertOne(ctx, toTransactionDoc(tx)); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *MongoStore) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	return s.findTransactions(ctx, bson.M{})
}

func (s *MongoStore) ListTransactionsByVehicle(ctx context.Context, vehicleID string) ([]model.Transaction, error) {
	return s.findTransactions(ctx, bson.M{"vehicle_id": vehicleID})
}

func (s *MongoStore) ListVehicleIDs(ctx context.Context) ([]string, error) {
	raw, err := s.db.Collection("transactions").Distinct(ctx, "vehicle_id", bson.M{})
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, v := range raw {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *MongoStore) InsertExpense(ctx context.Context, e *model.Expense) error {
	doc := expenseDoc{
		ID: e.ID, VehicleID: e.VehicleID, Category: e.Category,
		Amount: e.Amount.String(), Date: e.Date, PayeeID: e.PayeeID,
	}
	if _, err := s.db.Collection("expenses").InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (s *MongoStore) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	return s.findExpenses(ctx, bson.M{})
}

func (s *MongoStore) ListExpensesByVehicle(ctx context.Context, vehicleID string) ([]model.Expense, error) {
	return s.findExpenses(ctx, bson.M{"vehicle_id": vehicleID})
}

func (s *MongoStore) findTransactions(ctx context.Context, filter bson.M) ([]model.Transaction, error) {
	cur, err := s.db.Collection("transactions").Find(ctx, filter,
		options.Find().SetSort(bson.M{"date": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var txs []model.Transaction
	for cur.Next(ctx) {
		var doc transactionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		txs = append(txs, fromTransactionDoc(doc))
	}
	return txs, cur.Err()
}

func (s *MongoStore) findExpenses(ctx context.Context, filter bson.M) ([]model.Expense, error) {
	cur, err := s.db.Collection("expenses").Find(ctx, filter,
		options.Find().SetSort(bson.M{"date": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var exps []model.Expense
	for cur.Next(ctx) {
		var doc expenseDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		amount, _ := decimal.NewFromString(doc.Amount)
		exps = append(exps, model.Expense{
			ID: doc.ID, VehicleID: doc.VehicleID, Category: doc.Category,
			Amount: amount, Date: doc.Date, PayeeID: doc.PayeeID,
		})
	}
	return exps, cur.Err()
}

func toTransactionDoc(tx *model.Transaction) transactionDoc {
	doc := transactionDoc{
		ID:             tx.ID,
		VehicleID:      tx.VehicleID,
		Direction:      tx.Direction,
		Date:           tx.Date,
		BasePrice:      tx.BasePrice.String(),
		Discount:       tx.Discount.String(),
		TotalPrice:     tx.TotalPrice.String(),
		CounterpartyID: tx.CounterpartyID,
		Notes:          tx.Notes,
	}
	for _, item := range tx.Taxes {
		doc.Taxes = append(doc.Taxes, lineItemDoc{
			Name: item.Name, Amount: item.Amount.String(), Percentage: item.Percentage.String(),
		})
	}
	for _, item := range tx.Fees {
		doc.Fees = append(doc.Fees, lineItemDoc{
			Name: item.Name, Amount: item.Amount.String(), Percentage: item.Percentage.String(),
		})
	}
	for _, p := range tx.Payments {
		doc.Payments = append(doc.Payments, paymentDoc{
			Method: p.Method, Amount: p.Amount.String(), Date: p.Date,
		})
	}
	return doc
}

func fromTransactionDoc(doc transactionDoc) model.Transaction {
	tx := model.Transaction{
		ID:             doc.ID,
		VehicleID:      doc.VehicleID,
		Direction:      doc.Direction,
		Date:           doc.Date,
		CounterpartyID: doc.CounterpartyID,
		Notes:          doc.Notes,
	}
	tx.BasePrice, _ = decimal.NewFromString(doc.BasePrice)
	tx.Discount, _ = decimal.NewFromString(doc.Discount)
	tx.TotalPrice, _ = decimal.NewFromString(doc.TotalPrice)
	for _, item := range doc.Taxes {
		amount, _ := decimal.NewFromString(item.Amount)
		pct, _ := decimal.NewFromString(item.Percentage)
		tx.Taxes = append(tx.Taxes, model.LineItem{Name: item.Name, Amount: amount, Percentage: pct})
	}
	for _, item := range doc.Fees {
		amount, _ := decimal.NewFromString(item.Amount)
		pct, _ := decimal.NewFromString(item.Percentage)
		tx.Fees = append(tx.Fees, model.LineItem{Name: item.Name, Amount: amount, Percentage: pct})
	}
	for _, p := range doc.Payments {
		amount, _ := decimal.NewFromString(p.Amount)
		tx.Payments = append(tx.Payments, model.Payment{Method: p.Method, Amount: amount, Date: p.Date})
	}
	return tx
}
