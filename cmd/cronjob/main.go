package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"fleetledger-backend/internal/config"
	"fleetledger-backend/internal/jobs"
	"fleetledger-backend/internal/logger"
	"fleetledger-backend/internal/repository/postgres"
	"fleetledger-backend/internal/scheduler"
	"fleetledger-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'rollover-rental-charges', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting FleetLedger Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize Services
	emailService := service.NewEmailService(cfg.Email)
	billingService := service.NewBillingService(store.ChargeRepository)
	paymentService := service.NewPaymentService(store.PaymentRepository, store.CustomerRepository)
	reminderService := service.NewReminderService(
		store.ReminderRepository,
		store.ChargeRepository,
		store.RentalRepository,
		store.VehicleRepository,
		cfg.Reminders,
	)

	jobServices := &jobs.Services{
		Billing:  billingService,
		Payment:  paymentService,
		Reminder: reminderService,
		Email:    emailService,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, store, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "rollover-rental-charges":
		jobRunner.RolloverRentalCharges()
	case "mark-overdue-charges":
		jobRunner.MarkOverdueCharges()
	case "activate-upcoming-rentals":
		jobRunner.ActivateUpcomingRentals()
	case "generate-reminders":
		jobRunner.GenerateReminders()
	case "dispatch-reminder-emails":
		jobRunner.DispatchReminderEmails()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - rollover-rental-charges\n")
		fmt.Printf("  - mark-overdue-charges\n")
		fmt.Printf("  - activate-upcoming-rentals\n")
		fmt.Printf("  - generate-reminders\n")
		fmt.Printf("  - dispatch-reminder-emails\n")
		fmt.Printf("  - all-nightly\n")
		os.Exit(1)
	}
}
