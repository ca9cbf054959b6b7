package service

import (
	"context"
	"fmt"
	"time"

	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/logger"
	"fleetledger-backend/internal/repository"
)

type billingService struct {
	chargeRepo repository.ChargeRepository
}

func NewBillingService(chargeRepo repository.ChargeRepository) BillingService {
	return &billingService{chargeRepo: chargeRepo}
}

// GenerateInitialCharge creates the charge for the first billing period, due
// on the rental's start date. Safe to call twice: the second call returns the
// charge created by the first.
func (s *billingService) GenerateInitialCharge(ctx context.Context, rental *domain.Rental) (*domain.Charge, error) {
	logger.EnterMethod("billingService.GenerateInitialCharge", "rentalID", rental.ID)

	if !domain.ValidCadence(rental.Cadence) {
		return nil, fmt.Errorf("cadence %q: %w", rental.Cadence, domain.ErrInvalidCadence)
	}

	charge := &domain.Charge{
		RentalID:          rental.ID,
		DueDate:           dateOnly(rental.StartDate),
		Amount:            rental.PeriodicAmount,
		AmountOutstanding: rental.PeriodicAmount,
		Status:            domain.ChargeStatusOpen,
	}
	created, err := s.chargeRepo.Create(ctx, charge)
	if err != nil {
		logger.ExitMethodWithError("billingService.GenerateInitialCharge", err, "rentalID", rental.ID)
		return nil, err
	}
	if !created {
		charges, err := s.chargeRepo.ListByRental(ctx, rental.ID)
		if err != nil {
			return nil, err
		}
		for i := range charges {
			if charges[i].DueDate.Equal(charge.DueDate) {
				return &charges[i], nil
			}
		}
		return nil, fmt.Errorf("initial charge for rental %s: %w", rental.ID, domain.ErrNotFound)
	}

	logger.ExitMethod("billingService.GenerateInitialCharge", "rentalID", rental.ID, "chargeID", charge.ID)
	return charge, nil
}

// RolloverCharges backfills one charge per billing period between the last
// generated charge and asOf. Periods are anchored at the rental's start date,
// so a monthly rental starting on the 31st bills on the last day of shorter
// months without the anchor drifting. Already-present periods are skipped,
// which makes the whole sweep idempotent.
func (s *billingService) RolloverCharges(ctx context.Context, rental *domain.Rental, asOf time.Time) ([]domain.Charge, error) {
	logger.EnterMethod("billingService.RolloverCharges", "rentalID", rental.ID, "asOf", asOf.Format("2006-01-02"))

	if !domain.ValidCadence(rental.Cadence) {
		return nil, fmt.Errorf("cadence %q: %w", rental.Cadence, domain.ErrInvalidCadence)
	}

	lastDue, err := s.chargeRepo.LastDueDate(ctx, rental.ID)
	if err != nil {
		return nil, err
	}

	start := dateOnly(rental.StartDate)
	today := dateOnly(asOf)
	var cutoff time.Time
	if rental.EndDate != nil {
		cutoff = dateOnly(*rental.EndDate)
		if today.Before(cutoff) {
			cutoff = today
		}
	} else {
		cutoff = today
	}

	var created []domain.Charge
	for n := 0; ; n++ {
		due := periodDueDate(start, rental.Cadence, n)
		if due.After(cutoff) {
			break
		}
		if lastDue != nil && !due.After(dateOnly(*lastDue)) {
			continue
		}
		charge := domain.Charge{
			RentalID:          rental.ID,
			DueDate:           due,
			Amount:            rental.PeriodicAmount,
			AmountOutstanding: rental.PeriodicAmount,
			Status:            domain.ChargeStatusOpen,
		}
		inserted, err := s.chargeRepo.Create(ctx, &charge)
		if err != nil {
			logger.ExitMethodWithError("billingService.RolloverCharges", err, "rentalID", rental.ID)
			return created, err
		}
		if inserted {
			created = append(created, charge)
		}
	}

	logger.ExitMethod("billingService.RolloverCharges", "rentalID", rental.ID, "created", len(created))
	return created, nil
}

// periodDueDate returns the due date of the nth billing period (0-based)
// anchored at start.
func periodDueDate(start time.Time, cadence domain.BillingCadence, n int) time.Time {
	switch cadence {
	case domain.CadenceDaily:
		return start.AddDate(0, 0, n)
	case domain.CadenceWeekly:
		return start.AddDate(0, 0, 7*n)
	case domain.CadenceMonthly:
		return addMonthsClamped(start, n)
	default:
		return start
	}
}

// addMonthsClamped advances by whole months, clamping the day of month to the
// target month's last day instead of letting it spill over the way AddDate
// does (Jan 31 + 1 month is Feb 28/29, not Mar 2).
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if lastDay := firstOfTarget.AddDate(0, 1, -1).Day(); d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, t.Location())
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
