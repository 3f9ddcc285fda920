package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/motorlot/dealer-engine/internal/ledger"
	"github.com/motorlot/dealer-engine/internal/metrics"
	"github.com/motorlot/dealer-engine/internal/scheduler"
	"github.com/motorlot/dealer-engine/internal/store"
)

func main() {
	godotenv.Load() // optional .env for local development

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	switch {
	case os.Getenv("DATABASE_URL") != "":
		pool, err := pgxpool.New(context.Background(), os.Getenv("DATABASE_URL"))
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		st = store.NewPostgresStore(pool)
		slog.Info("connected to PostgreSQL")

	case os.Getenv("MONGO_URL") != "":
		dbName := os.Getenv("MONGO_DB")
		if dbName == "" {
			dbName = "dealer"
		}
		ms, err := store.NewMongoStore(context.Background(), os.Getenv("MONGO_URL"), dbName)
		if err != nil {
			slog.Error("mongodb connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, func() { ms.Close(context.Background()) })
		st = ms
		slog.Info("connected to MongoDB", "db", dbName)

	default:
		slog.Warn("no DATABASE_URL or MONGO_URL set, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	// Wrap with Redis read-through cache if configured.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "err", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		st = store.NewCachedStore(st, rdb, 30*time.Second)
		slog.Info("Redis cache enabled")
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- WebSocket hub ---
	wsHub := ledger.NewWSHub()
	go wsHub.Run()

	// --- Ledger service ---
	svc := ledger.NewService(st, wsHub)

	// --- Inventory gauge refresh ---
	cronSpec := os.Getenv("INVENTORY_REFRESH_CRON")
	if cronSpec == "" {
		cronSpec = "@every 5m"
	}
	sched := scheduler.New(st, cronSpec)
	if err := sched.Start(); err != nil {
		slog.Error("scheduler start failed", "err", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// CORS middleware for dashboard cross-origin requests.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"dealer-engine"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for record-event notifications.
		r.Get("/ws", wsHub.HandleWS)

		// Vehicle registry.
		r.Get("/vehicles", svc.ListVehicles)
		r.Post("/vehicles", svc.RegisterVehicle)
		r.Get("/vehicles/{vehicleID}", svc.GetVehicle)
		r.Get("/vehicles/{vehicleID}/profit", svc.GetVehicleProfit)

		// Record keeping.
		r.Get("/transactions", svc.ListTransactions)
		r.Post("/transactions", svc.RecordTransaction)
		r.Get("/expenses", svc.ListExpenses)
		r.Post("/expenses", svc.RecordExpense)

		// Fleet reports.
		r.Get("/portfolio", svc.GetPortfolio)
		r.Get("/reports/period", svc.GetPeriodReport)
		r.Get("/reports/inventory", svc.GetInventoryReport)
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("dealer-engine listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down dealer-engine...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("dealer-engine stopped")
}
