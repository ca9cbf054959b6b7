package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"fleetledger-backend/internal/jobs"
	"fleetledger-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	// Roll over rental charges
	_, err := s.cron.AddFunc(cfg.RolloverRentalCharges, s.jobs.RolloverRentalCharges)
	if err != nil {
		logger.Error("Failed to register RolloverRentalCharges job", "error", err)
	}

	// Mark overdue charges after the rollover
	_, err = s.cron.AddFunc(cfg.MarkOverdueCharges, s.jobs.MarkOverdueCharges)
	if err != nil {
		logger.Error("Failed to register MarkOverdueCharges job", "error", err)
	}

	// Activate upcoming rentals
	_, err = s.cron.AddFunc(cfg.ActivateUpcomingRentals, s.jobs.ActivateUpcomingRentals)
	if err != nil {
		logger.Error("Failed to register ActivateUpcomingRentals job", "error", err)
	}

	// Derive reminders
	_, err = s.cron.AddFunc(cfg.GenerateReminders, s.jobs.GenerateReminders)
	if err != nil {
		logger.Error("Failed to register GenerateReminders job", "error", err)
	}

	// Dispatch reminder emails
	_, err = s.cron.AddFunc(cfg.DispatchReminderEmails, s.jobs.DispatchReminderEmails)
	if err != nil {
		logger.Error("Failed to register DispatchReminderEmails job", "error", err)
	}

	logger.Info("All cron jobs registered successfully")
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler is running
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
