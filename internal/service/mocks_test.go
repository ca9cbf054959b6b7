package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/repository"
)

type MockCustomerRepo struct{ mock.Mock }

func (m *MockCustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepo) List(ctx context.Context, status string) ([]domain.Customer, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomerRepo) Update(ctx context.Context, c *domain.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepo) CountActiveRentals(ctx context.Context, customerID string) (int32, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int32), args.Error(1)
}

type MockVehicleRepo struct{ mock.Mock }

func (m *MockVehicleRepo) Create(ctx context.Context, v *domain.Vehicle) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockVehicleRepo) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleRepo) List(ctx context.Context, status string) ([]domain.Vehicle, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

func (m *MockVehicleRepo) Update(ctx context.Context, v *domain.Vehicle) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockVehicleRepo) UpdateStatus(ctx context.Context, id string, status domain.VehicleStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockVehicleRepo) ListWithDocumentsDueBy(ctx context.Context, cutoff time.Time) ([]domain.Vehicle, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

type MockRentalRepo struct{ mock.Mock }

func (m *MockRentalRepo) Create(ctx context.Context, r *domain.Rental) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRentalRepo) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) Update(ctx context.Context, r *domain.Rental) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRentalRepo) ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Rental, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) ActivateStartedBy(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRentalRepo) DeleteCascade(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockChargeRepo struct{ mock.Mock }

func (m *MockChargeRepo) Create(ctx context.Context, c *domain.Charge) (bool, error) {
	args := m.Called(ctx, c)
	return args.Bool(0), args.Error(1)
}

func (m *MockChargeRepo) GetByID(ctx context.Context, id string) (*domain.Charge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Charge), args.Error(1)
}

func (m *MockChargeRepo) ListByRental(ctx context.Context, rentalID string) ([]domain.Charge, error) {
	args := m.Called(ctx, rentalID)
	return args.Get(0).([]domain.Charge), args.Error(1)
}

func (m *MockChargeRepo) LastDueDate(ctx context.Context, rentalID string) (*time.Time, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockChargeRepo) ListOutstanding(ctx context.Context) ([]domain.Charge, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Charge), args.Error(1)
}

func (m *MockChargeRepo) MarkOverdueBefore(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentRepo runs InTx callbacks against Tx when set, so allocation
// walks can be exercised without a database.
type MockPaymentRepo struct {
	mock.Mock
	Tx repository.AllocationTx
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepo) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Payment, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepo) ListAllocations(ctx context.Context, paymentID string) ([]domain.Allocation, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).([]domain.Allocation), args.Error(1)
}

func (m *MockPaymentRepo) InTx(ctx context.Context, fn func(tx repository.AllocationTx) error) error {
	if m.Tx != nil {
		return fn(m.Tx)
	}
	return m.Called(ctx, fn).Error(0)
}

func (m *MockPaymentRepo) DeleteWithAllocations(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockAllocationTx struct{ mock.Mock }

func (m *MockAllocationTx) OutstandingCharges(ctx context.Context, customerID string, rentalID *string) ([]domain.Charge, error) {
	args := m.Called(ctx, customerID, rentalID)
	return args.Get(0).([]domain.Charge), args.Error(1)
}

func (m *MockAllocationTx) InsertAllocation(ctx context.Context, a *domain.Allocation) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAllocationTx) DecrementOutstanding(ctx context.Context, chargeID string, expected, amount decimal.Decimal, status domain.ChargeStatus) error {
	return m.Called(ctx, chargeID, expected, amount, status).Error(0)
}

func (m *MockAllocationTx) MarkPaymentProcessed(ctx context.Context, paymentID string) error {
	return m.Called(ctx, paymentID).Error(0)
}

type MockLedgerRepo struct{ mock.Mock }

func (m *MockLedgerRepo) RentalTotals(ctx context.Context, rentalID string) (*repository.LedgerTotals, decimal.Decimal, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, decimal.Zero, args.Error(2)
	}
	return args.Get(0).(*repository.LedgerTotals), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockLedgerRepo) CustomerTotals(ctx context.Context, customerID string) (*repository.LedgerTotals, decimal.Decimal, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, decimal.Zero, args.Error(2)
	}
	return args.Get(0).(*repository.LedgerTotals), args.Get(1).(decimal.Decimal), args.Error(2)
}

type MockReminderRepo struct{ mock.Mock }

func (m *MockReminderRepo) Create(ctx context.Context, r *domain.Reminder) (bool, error) {
	args := m.Called(ctx, r)
	return args.Bool(0), args.Error(1)
}

func (m *MockReminderRepo) ListPending(ctx context.Context, remindOnOrBefore time.Time) ([]domain.Reminder, error) {
	args := m.Called(ctx, remindOnOrBefore)
	return args.Get(0).([]domain.Reminder), args.Error(1)
}

func (m *MockReminderRepo) List(ctx context.Context, status string, limit, offset int32) ([]domain.Reminder, int32, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]domain.Reminder), args.Get(1).(int32), args.Error(2)
}

func (m *MockReminderRepo) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	return m.Called(ctx, id, sentAt).Error(0)
}

type MockInvoiceRepo struct{ mock.Mock }

func (m *MockInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) NextSequence(ctx context.Context, yearMonth string) (int32, error) {
	args := m.Called(ctx, yearMonth)
	return args.Get(0).(int32), args.Error(1)
}

type MockBillingService struct{ mock.Mock }

func (m *MockBillingService) GenerateInitialCharge(ctx context.Context, rental *domain.Rental) (*domain.Charge, error) {
	args := m.Called(ctx, rental)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Charge), args.Error(1)
}

func (m *MockBillingService) RolloverCharges(ctx context.Context, rental *domain.Rental, asOf time.Time) ([]domain.Charge, error) {
	args := m.Called(ctx, rental, asOf)
	return args.Get(0).([]domain.Charge), args.Error(1)
}

type MockPaymentService struct{ mock.Mock }

func (m *MockPaymentService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Payment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) ApplyPayment(ctx context.Context, paymentID string) ([]domain.Allocation, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).([]domain.Allocation), args.Error(1)
}

func (m *MockPaymentService) GetPayment(ctx context.Context, id string) (*domain.Payment, []domain.Allocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Payment), args.Get(1).([]domain.Allocation), args.Error(2)
}

func (m *MockPaymentService) DeletePayment(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockInvoiceService struct{ mock.Mock }

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) ListByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.Invoice), args.Error(1)
}
