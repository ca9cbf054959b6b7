package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fleetledger-backend/internal/config"
	"fleetledger-backend/internal/domain"
)

func reminderConfig() config.RemindersConfig {
	return config.RemindersConfig{
		ChargeDueOffsetDays:     7,
		OverdueRepeatDays:       3,
		DocumentOffsetDays:      []int{30, 14, 7, 1},
		DocumentScanHorizonDays: 60,
	}
}

func newReminderFixture() (*MockReminderRepo, *MockChargeRepo, *MockRentalRepo, *MockVehicleRepo, ReminderService) {
	reminderRepo := new(MockReminderRepo)
	chargeRepo := new(MockChargeRepo)
	rentalRepo := new(MockRentalRepo)
	vehicleRepo := new(MockVehicleRepo)
	svc := NewReminderService(reminderRepo, chargeRepo, rentalRepo, vehicleRepo, reminderConfig())
	return reminderRepo, chargeRepo, rentalRepo, vehicleRepo, svc
}

func TestReminderService_DeriveReminders_Charges(t *testing.T) {
	ctx := context.Background()
	asOf := date(2024, 3, 10)
	rental := &domain.Rental{ID: "rental-1", CustomerID: "cust-1"}

	t.Run("Charge due in five days gets one warning reminder", func(t *testing.T) {
		reminderRepo, chargeRepo, rentalRepo, vehicleRepo, svc := newReminderFixture()

		charge := outstandingCharge("charge-1", 500)
		charge.DueDate = date(2024, 3, 15)
		chargeRepo.On("ListOutstanding", ctx).Return([]domain.Charge{charge}, nil).Once()
		rentalRepo.On("GetByID", ctx, "rental-1").Return(rental, nil).Once()
		vehicleRepo.On("ListWithDocumentsDueBy", ctx, mock.Anything).Return([]domain.Vehicle{}, nil).Once()

		reminderRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.Reminder) bool {
			return r.RuleCode == "CHARGE_DUE" &&
				r.ObjectType == domain.ReminderObjectCharge &&
				r.ObjectID == "charge-1" &&
				r.DueOn.Equal(date(2024, 3, 15)) &&
				r.Severity == domain.SeverityWarning
		})).Return(true, nil).Once()

		created, err := svc.DeriveReminders(ctx, asOf)
		assert.NoError(t, err)
		assert.Len(t, created, 1)
		reminderRepo.AssertExpectations(t)
	})

	t.Run("Re-running the same day creates nothing", func(t *testing.T) {
		reminderRepo, chargeRepo, rentalRepo, vehicleRepo, svc := newReminderFixture()

		charge := outstandingCharge("charge-1", 500)
		charge.DueDate = date(2024, 3, 15)
		chargeRepo.On("ListOutstanding", ctx).Return([]domain.Charge{charge}, nil).Once()
		rentalRepo.On("GetByID", ctx, "rental-1").Return(rental, nil).Once()
		vehicleRepo.On("ListWithDocumentsDueBy", ctx, mock.Anything).Return([]domain.Vehicle{}, nil).Once()
		reminderRepo.On("Create", ctx, mock.Anything).Return(false, nil).Once()

		created, err := svc.DeriveReminders(ctx, asOf)
		assert.NoError(t, err)
		assert.Empty(t, created)
	})

	t.Run("Overdue charge gets critical reminder on the repeat cycle", func(t *testing.T) {
		reminderRepo, chargeRepo, rentalRepo, vehicleRepo, svc := newReminderFixture()

		// Due 4 days ago: (4-1) % 3 == 0, so this is a repeat day.
		charge := outstandingCharge("charge-2", 250)
		charge.DueDate = date(2024, 3, 6)
		charge.Status = domain.ChargeStatusOverdue
		chargeRepo.On("ListOutstanding", ctx).Return([]domain.Charge{charge}, nil).Once()
		rentalRepo.On("GetByID", ctx, "rental-1").Return(rental, nil).Once()
		vehicleRepo.On("ListWithDocumentsDueBy", ctx, mock.Anything).Return([]domain.Vehicle{}, nil).Once()

		reminderRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.Reminder) bool {
			return r.RuleCode == "CHARGE_OVERDUE_D4" && r.Severity == domain.SeverityCritical
		})).Return(true, nil).Once()

		created, err := svc.DeriveReminders(ctx, asOf)
		assert.NoError(t, err)
		assert.Len(t, created, 1)
		reminderRepo.AssertExpectations(t)
	})

	t.Run("Overdue charge off the repeat cycle is skipped", func(t *testing.T) {
		reminderRepo, chargeRepo, _, vehicleRepo, svc := newReminderFixture()

		// Due 3 days ago: (3-1) % 3 != 0.
		charge := outstandingCharge("charge-3", 250)
		charge.DueDate = date(2024, 3, 7)
		charge.Status = domain.ChargeStatusOverdue
		chargeRepo.On("ListOutstanding", ctx).Return([]domain.Charge{charge}, nil).Once()
		vehicleRepo.On("ListWithDocumentsDueBy", ctx, mock.Anything).Return([]domain.Vehicle{}, nil).Once()

		created, err := svc.DeriveReminders(ctx, asOf)
		assert.NoError(t, err)
		assert.Empty(t, created)
		reminderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Charge far from due is not reminded yet", func(t *testing.T) {
		reminderRepo, chargeRepo, _, vehicleRepo, svc := newReminderFixture()

		charge := outstandingCharge("charge-4", 500)
		charge.DueDate = date(2024, 4, 20)
		chargeRepo.On("ListOutstanding", ctx).Return([]domain.Charge{charge}, nil).Once()
		vehicleRepo.On("ListWithDocumentsDueBy", ctx, mock.Anything).Return([]domain.Vehicle{}, nil).Once()

		created, err := svc.DeriveReminders(ctx, asOf)
		assert.NoError(t, err)
		assert.Empty(t, created)
		reminderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestReminderService_DeriveReminders_VehicleDocuments(t *testing.T) {
	ctx := context.Background()
	asOf := date(2024, 3, 10)

	vehicleWithMOT := func(due time.Time) domain.Vehicle {
		return domain.Vehicle{ID: "veh-1", Reg: "AB12 CDE", Make: "Ford", Model: "Transit", MOTDue: &due}
	}

	t.Run("MOT ten days out lands in the 14-day tier as info", func(t *testing.T) {
		reminderRepo, chargeRepo, _, vehicleRepo, svc := newReminderFixture()

		chargeRepo.On("ListOutstanding", ctx).Return([]domain.Charge{}, nil).Once()
		vehicleRepo.On("ListWithDocumentsDueBy", ctx, mock.Anything).
			Return([]domain.Vehicle{vehicleWithMOT(date(2024, 3, 20))}, nil).Once()

		reminderRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.Reminder) bool {
			return r.RuleCode == "VEHICLE_MOT_D14" &&
				r.ObjectType == domain.ReminderObjectVehicle &&
				r.ObjectID == "veh-1" &&
				r.Severity == domain.SeverityInfo
		})).Return(true, nil).Once()

		created, err := svc.DeriveReminders(ctx, asOf)
		assert.NoError(t, err)
		assert.Len(t, created, 1)
		reminderRepo.AssertExpectations(t)
	})

	t.Run("MOT five days out is a warning in the 7-day tier", func(t *testing.T) {
		reminderRepo, chargeRepo, _, vehicleRepo, svc := newReminderFixture()

		chargeRepo.On("ListOutstanding", ctx).Return([]domain.Charge{}, nil).Once()
		vehicleRepo.On("ListWithDocumentsDueBy", ctx, mock.Anything).
			Return([]domain.Vehicle{vehicleWithMOT(date(2024, 3, 15))}, nil).Once()

		reminderRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.Reminder) bool {
			return r.RuleCode == "VEHICLE_MOT_D7" && r.Severity == domain.SeverityWarning
		})).Return(true, nil).Once()

		created, err := svc.DeriveReminders(ctx, asOf)
		assert.NoError(t, err)
		assert.Len(t, created, 1)
	})

	t.Run("Expired MOT is critical on the repeat cycle", func(t *testing.T) {
		reminderRepo, chargeRepo, _, vehicleRepo, svc := newReminderFixture()

		chargeRepo.On("ListOutstanding", ctx).Return([]domain.Charge{}, nil).Once()
		vehicleRepo.On("ListWithDocumentsDueBy", ctx, mock.Anything).
			Return([]domain.Vehicle{vehicleWithMOT(date(2024, 3, 9))}, nil).Once()

		reminderRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.Reminder) bool {
			return r.RuleCode == "VEHICLE_MOT_EXPIRED_D1" && r.Severity == domain.SeverityCritical
		})).Return(true, nil).Once()

		created, err := svc.DeriveReminders(ctx, asOf)
		assert.NoError(t, err)
		assert.Len(t, created, 1)
	})
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, domain.SeverityCritical, severityFor(-1))
	assert.Equal(t, domain.SeverityWarning, severityFor(0))
	assert.Equal(t, domain.SeverityWarning, severityFor(7))
	assert.Equal(t, domain.SeverityInfo, severityFor(8))
	assert.Equal(t, domain.SeverityInfo, severityFor(30))
}

func TestSmallestCoveringOffset(t *testing.T) {
	offsets := []int{1, 7, 14, 30}

	tier, ok := smallestCoveringOffset(offsets, 10)
	assert.True(t, ok)
	assert.Equal(t, 14, tier)

	tier, ok = smallestCoveringOffset(offsets, 0)
	assert.True(t, ok)
	assert.Equal(t, 1, tier)

	_, ok = smallestCoveringOffset(offsets, 45)
	assert.False(t, ok)
}
