package jobs

import (
	"context"
	"time"

	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/logger"
)

// RolloverRentalCharges generates the charges that have fallen due on every
// active rental since its last billing period
func (jr *JobRunner) RolloverRentalCharges() {
	jr.runWithRecovery("RolloverRentalCharges", func() {
		ctx := context.Background()
		asOf := time.Now().UTC()

		rentals, err := jr.store.RentalRepository.ListByStatus(ctx, domain.RentalStatusActive)
		if err != nil {
			logger.Error("Failed to list active rentals", "error", err)
			return
		}

		totalCreated := 0
		for i := range rentals {
			created, err := jr.services.Billing.RolloverCharges(ctx, &rentals[i], asOf)
			if err != nil {
				logger.Error("Failed to roll over charges for rental",
					"rental_id", rentals[i].ID,
					"error", err)
				continue
			}
			totalCreated += len(created)
		}

		logger.Info("Charge rollover completed",
			"rentals_processed", len(rentals),
			"charges_created", totalCreated)
	})
}

// MarkOverdueCharges flips still-outstanding charges whose due date has
// passed to Overdue
func (jr *JobRunner) MarkOverdueCharges() {
	jr.runWithRecovery("MarkOverdueCharges", func() {
		ctx := context.Background()

		count, err := jr.store.ChargeRepository.MarkOverdueBefore(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to mark overdue charges", "error", err)
			return
		}

		logger.Info("Marked overdue charges", "count", count)
	})
}
