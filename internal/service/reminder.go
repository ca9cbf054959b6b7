package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fleetledger-backend/internal/config"
	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/logger"
	"fleetledger-backend/internal/repository"
)

type reminderService struct {
	reminderRepo repository.ReminderRepository
	chargeRepo   repository.ChargeRepository
	rentalRepo   repository.RentalRepository
	vehicleRepo  repository.VehicleRepository
	cfg          config.RemindersConfig
}

func NewReminderService(
	reminderRepo repository.ReminderRepository,
	chargeRepo repository.ChargeRepository,
	rentalRepo repository.RentalRepository,
	vehicleRepo repository.VehicleRepository,
	cfg config.RemindersConfig,
) ReminderService {
	return &reminderService{
		reminderRepo: reminderRepo,
		chargeRepo:   chargeRepo,
		rentalRepo:   rentalRepo,
		vehicleRepo:  vehicleRepo,
		cfg:          cfg,
	}
}

// DeriveReminders sweeps outstanding charges and vehicle document expiries
// and records due reminders. Derivation is idempotent for a given asOf: rule
// codes carry the repeat ordinal, so re-running the sweep finds every tuple
// already present and inserts nothing.
func (s *reminderService) DeriveReminders(ctx context.Context, asOf time.Time) ([]domain.Reminder, error) {
	logger.EnterMethod("reminderService.DeriveReminders", "asOf", asOf.Format("2006-01-02"))

	today := dateOnly(asOf)

	var created []domain.Reminder
	chargeReminders, err := s.deriveChargeReminders(ctx, today)
	if err != nil {
		logger.ExitMethodWithError("reminderService.DeriveReminders", err)
		return created, err
	}
	created = append(created, chargeReminders...)

	vehicleReminders, err := s.deriveVehicleReminders(ctx, today)
	if err != nil {
		logger.ExitMethodWithError("reminderService.DeriveReminders", err)
		return created, err
	}
	created = append(created, vehicleReminders...)

	logger.ExitMethod("reminderService.DeriveReminders", "created", len(created))
	return created, nil
}

func (s *reminderService) deriveChargeReminders(ctx context.Context, today time.Time) ([]domain.Reminder, error) {
	charges, err := s.chargeRepo.ListOutstanding(ctx)
	if err != nil {
		return nil, err
	}

	rentals := make(map[string]*domain.Rental)
	var created []domain.Reminder
	for i := range charges {
		charge := &charges[i]
		due := dateOnly(charge.DueDate)
		daysUntil := daysBetween(today, due)

		var rem *domain.Reminder
		switch {
		case daysUntil < 0:
			daysOverdue := -daysUntil
			if (daysOverdue-1)%s.cfg.OverdueRepeatDays != 0 {
				continue
			}
			rem = &domain.Reminder{
				RuleCode:   fmt.Sprintf("CHARGE_OVERDUE_D%d", daysOverdue),
				ObjectType: domain.ReminderObjectCharge,
				ObjectID:   charge.ID,
				Title:      "Rental payment overdue",
				Message:    fmt.Sprintf("Payment of %s was due on %s and is %d day(s) overdue.", charge.AmountOutstanding, due.Format("2 Jan 2006"), daysOverdue),
				DueOn:      due,
				RemindOn:   today,
				Severity:   domain.SeverityCritical,
			}
		case daysUntil <= s.cfg.ChargeDueOffsetDays:
			rem = &domain.Reminder{
				RuleCode:   "CHARGE_DUE",
				ObjectType: domain.ReminderObjectCharge,
				ObjectID:   charge.ID,
				Title:      "Rental payment due",
				Message:    fmt.Sprintf("Payment of %s is due on %s.", charge.AmountOutstanding, due.Format("2 Jan 2006")),
				DueOn:      due,
				RemindOn:   due.AddDate(0, 0, -s.cfg.ChargeDueOffsetDays),
				Severity:   severityFor(daysUntil),
			}
		default:
			continue
		}

		rental, ok := rentals[charge.RentalID]
		if !ok {
			rental, err = s.rentalRepo.GetByID(ctx, charge.RentalID)
			if err != nil {
				return created, err
			}
			rentals[charge.RentalID] = rental
		}
		rem.Context = map[string]string{
			"rental_id":   rental.ID,
			"customer_id": rental.CustomerID,
			"amount":      charge.AmountOutstanding.String(),
		}

		inserted, err := s.reminderRepo.Create(ctx, rem)
		if err != nil {
			return created, err
		}
		if inserted {
			created = append(created, *rem)
		}
	}
	return created, nil
}

func (s *reminderService) deriveVehicleReminders(ctx context.Context, today time.Time) ([]domain.Reminder, error) {
	cutoff := today.AddDate(0, 0, s.cfg.DocumentScanHorizonDays)
	vehicles, err := s.vehicleRepo.ListWithDocumentsDueBy(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	offsets := append([]int(nil), s.cfg.DocumentOffsetDays...)
	sort.Ints(offsets)

	var created []domain.Reminder
	for i := range vehicles {
		vehicle := &vehicles[i]
		for doc, expiry := range vehicle.DocumentDueDates() {
			due := dateOnly(expiry)
			daysUntil := daysBetween(today, due)

			var rem *domain.Reminder
			if daysUntil < 0 {
				daysOverdue := -daysUntil
				if (daysOverdue-1)%s.cfg.OverdueRepeatDays != 0 {
					continue
				}
				rem = &domain.Reminder{
					RuleCode:   fmt.Sprintf("VEHICLE_%s_EXPIRED_D%d", doc, daysOverdue),
					ObjectType: domain.ReminderObjectVehicle,
					ObjectID:   vehicle.ID,
					Title:      fmt.Sprintf("%s expired: %s", doc, vehicle.Reg),
					Message:    fmt.Sprintf("%s for %s %s %s expired on %s.", doc, vehicle.Reg, vehicle.Make, vehicle.Model, due.Format("2 Jan 2006")),
					DueOn:      due,
					RemindOn:   today,
					Severity:   domain.SeverityCritical,
				}
			} else {
				// Emit the smallest configured tier that covers the remaining
				// days, so a document first seen 5 days out gets one reminder,
				// not one per tier.
				tier, ok := smallestCoveringOffset(offsets, daysUntil)
				if !ok {
					continue
				}
				rem = &domain.Reminder{
					RuleCode:   fmt.Sprintf("VEHICLE_%s_D%d", doc, tier),
					ObjectType: domain.ReminderObjectVehicle,
					ObjectID:   vehicle.ID,
					Title:      fmt.Sprintf("%s due: %s", doc, vehicle.Reg),
					Message:    fmt.Sprintf("%s for %s %s %s expires on %s.", doc, vehicle.Reg, vehicle.Make, vehicle.Model, due.Format("2 Jan 2006")),
					DueOn:      due,
					RemindOn:   due.AddDate(0, 0, -tier),
					Severity:   severityFor(daysUntil),
				}
			}
			rem.Context = map[string]string{
				"vehicle_id": vehicle.ID,
				"reg":        vehicle.Reg,
				"document":   string(doc),
			}

			inserted, err := s.reminderRepo.Create(ctx, rem)
			if err != nil {
				return created, err
			}
			if inserted {
				created = append(created, *rem)
			}
		}
	}
	return created, nil
}

func (s *reminderService) ListReminders(ctx context.Context, status string, page, pageSize int32) ([]domain.Reminder, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.reminderRepo.List(ctx, status, pageSize, (page-1)*pageSize)
}

func (s *reminderService) ListPending(ctx context.Context, asOf time.Time) ([]domain.Reminder, error) {
	return s.reminderRepo.ListPending(ctx, asOf)
}

func (s *reminderService) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	return s.reminderRepo.MarkSent(ctx, id, sentAt)
}

// severityFor maps days-until-due to a severity band: overdue is critical,
// within a week is warning, further out is informational.
func severityFor(daysUntil int) domain.ReminderSeverity {
	switch {
	case daysUntil < 0:
		return domain.SeverityCritical
	case daysUntil <= 7:
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}

// smallestCoveringOffset returns the smallest offset >= daysUntil from the
// ascending-sorted offsets.
func smallestCoveringOffset(offsets []int, daysUntil int) (int, bool) {
	for _, o := range offsets {
		if daysUntil <= o {
			return o, true
		}
	}
	return 0, false
}

// daysBetween returns whole days from a to b; both are expected to be
// midnight-normalized.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
