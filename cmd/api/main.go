package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/diyar150/crm-restaurant-backend/internal/config"
	"github.com/diyar150/crm-restaurant-backend/internal/fx"
	"github.com/diyar150/crm-restaurant-backend/internal/handler"
	"github.com/diyar150/crm-restaurant-backend/internal/logging"
	"github.com/diyar150/crm-restaurant-backend/internal/middleware"
	"github.com/diyar150/crm-restaurant-backend/internal/repository"
	"github.com/diyar150/crm-restaurant-backend/internal/service"
	"github.com/diyar150/crm-restaurant-backend/internal/service/ledger"
)

func main() {
	// Missing .env is fine in production; config comes from the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("pos-api", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           buildRouter(db, cfg),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func buildRouter(db *sql.DB, cfg *config.Config) http.Handler {
	currencies := repository.NewCurrencyRepository(db)
	customers := repository.NewCustomerRepository(db)
	branches := repository.NewBranchRepository(db)
	warehouses := repository.NewWarehouseRepository(db)
	users := repository.NewUserRepository(db)
	items := repository.NewItemRepository(db)
	inventory := repository.NewInventoryRepository(db)
	payments := repository.NewPaymentRepository(db)
	invoices := repository.NewSellInvoiceRepository(db)
	sellItems := repository.NewSellItemRepository(db)
	expenses := repository.NewExpenseRepository(db)
	salaries := repository.NewSalaryRepository(db)
	idempotency := repository.NewIdempotencyRepository(db)

	resolver := fx.NewResolver(currencies)
	ledgerSvc := ledger.NewService(payments, invoices, sellItems, customers, branches, warehouses, users, items, inventory, resolver, db)
	expenseSvc := service.NewExpenseService(expenses, branches, db)
	salarySvc := service.NewSalaryService(salaries, branches, users, db)
	customerSvc := service.NewCustomerService(customers, resolver)
	branchSvc := service.NewBranchService(branches)

	jwtExpiry := time.Duration(cfg.JWTExpiryH) * time.Hour

	healthHandler := handler.NewHealthHandler(db)
	authHandler := handler.NewAuthHandler(users, cfg.JWTSecret, jwtExpiry)
	paymentHandler := handler.NewPaymentHandler(ledgerSvc)
	invoiceHandler := handler.NewInvoiceHandler(ledgerSvc)
	sellItemHandler := handler.NewSellItemHandler(ledgerSvc)
	expenseHandler := handler.NewExpenseHandler(expenseSvc)
	salaryHandler := handler.NewSalaryHandler(salarySvc)
	customerHandler := handler.NewCustomerHandler(customerSvc)
	branchHandler := handler.NewBranchHandler(branchSvc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	authed := http.NewServeMux()

	authed.HandleFunc("POST /api/v1/payments", paymentHandler.Create)
	authed.HandleFunc("GET /api/v1/payments", paymentHandler.List)
	authed.HandleFunc("GET /api/v1/payments/{id}", paymentHandler.Get)
	authed.HandleFunc("PUT /api/v1/payments/{id}", paymentHandler.Update)
	authed.HandleFunc("DELETE /api/v1/payments/{id}", paymentHandler.Delete)

	authed.HandleFunc("POST /api/v1/invoices", invoiceHandler.Create)
	authed.HandleFunc("GET /api/v1/invoices", invoiceHandler.List)
	authed.HandleFunc("GET /api/v1/invoices/{id}", invoiceHandler.Get)
	authed.HandleFunc("PUT /api/v1/invoices/{id}", invoiceHandler.Update)
	authed.HandleFunc("DELETE /api/v1/invoices/{id}", invoiceHandler.Delete)

	authed.HandleFunc("POST /api/v1/invoices/items", sellItemHandler.Create)
	authed.HandleFunc("GET /api/v1/invoices/items", sellItemHandler.List)
	authed.HandleFunc("GET /api/v1/invoices/items/{id}", sellItemHandler.Get)
	authed.HandleFunc("PUT /api/v1/invoices/items/{id}", sellItemHandler.Update)
	authed.HandleFunc("DELETE /api/v1/invoices/items/{id}", sellItemHandler.Delete)

	authed.HandleFunc("POST /api/v1/expenses", expenseHandler.Create)
	authed.HandleFunc("GET /api/v1/expenses", expenseHandler.List)
	authed.HandleFunc("GET /api/v1/expenses/{id}", expenseHandler.Get)
	authed.HandleFunc("PUT /api/v1/expenses/{id}", expenseHandler.Update)
	authed.HandleFunc("DELETE /api/v1/expenses/{id}", expenseHandler.Delete)

	authed.HandleFunc("POST /api/v1/salaries", salaryHandler.Create)
	authed.HandleFunc("GET /api/v1/salaries", salaryHandler.List)
	authed.HandleFunc("GET /api/v1/salaries/{id}", salaryHandler.Get)
	authed.HandleFunc("PUT /api/v1/salaries/{id}", salaryHandler.Update)
	authed.HandleFunc("DELETE /api/v1/salaries/{id}", salaryHandler.Delete)

	authed.HandleFunc("POST /api/v1/customers", customerHandler.Create)
	authed.HandleFunc("GET /api/v1/customers", customerHandler.List)
	authed.HandleFunc("GET /api/v1/customers/{id}", customerHandler.Get)
	authed.HandleFunc("PUT /api/v1/customers/{id}", customerHandler.Update)
	authed.HandleFunc("DELETE /api/v1/customers/{id}", customerHandler.Delete)

	authed.HandleFunc("POST /api/v1/branches", branchHandler.Create)
	authed.HandleFunc("GET /api/v1/branches", branchHandler.List)
	authed.HandleFunc("GET /api/v1/branches/{id}", branchHandler.Get)

	protected := middleware.Auth(cfg.JWTSecret)(middleware.Idempotency(idempotency)(authed))
	mux.Handle("/api/v1/", protected)

	return middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connectDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeS) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeS) * time.Second)

	for i := range 30 {
		if err = db.Ping(); err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
