package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "fleetledger-backend/internal/api/http"
	"fleetledger-backend/internal/config"
	"fleetledger-backend/internal/logger"
	"fleetledger-backend/internal/repository/postgres"
	"fleetledger-backend/internal/security"
	"fleetledger-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting FleetLedger Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Services
	billingSvc := service.NewBillingService(store.ChargeRepository)
	paymentSvc := service.NewPaymentService(store.PaymentRepository, store.CustomerRepository)
	ledgerSvc := service.NewLedgerService(store.LedgerRepository)
	reminderSvc := service.NewReminderService(
		store.ReminderRepository,
		store.ChargeRepository,
		store.RentalRepository,
		store.VehicleRepository,
		cfg.Reminders,
	)
	invoiceSvc := service.NewInvoiceService(store.InvoiceRepository, store.CustomerRepository, store.VehicleRepository)
	rentalSvc := service.NewRentalService(
		store.RentalRepository,
		store.CustomerRepository,
		store.VehicleRepository,
		store.ChargeRepository,
		billingSvc,
		paymentSvc,
		invoiceSvc,
	)

	// Initialize HTTP API
	handler := httpapi.NewHandler(rentalSvc, paymentSvc, ledgerSvc, reminderSvc, invoiceSvc)
	router := httpapi.NewRouter(handler, tokenManager)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
