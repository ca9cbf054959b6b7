package jobs

import (
	"context"
	"time"

	"fleetledger-backend/internal/logger"
)

// ActivateUpcomingRentals moves Upcoming rentals whose start date has arrived
// to Active
func (jr *JobRunner) ActivateUpcomingRentals() {
	jr.runWithRecovery("ActivateUpcomingRentals", func() {
		ctx := context.Background()

		count, err := jr.store.RentalRepository.ActivateStartedBy(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to activate upcoming rentals", "error", err)
			return
		}

		logger.Info("Activated upcoming rentals", "count", count)
	})
}
