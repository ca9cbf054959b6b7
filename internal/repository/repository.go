package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fleetledger-backend/internal/domain"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context, status string) ([]domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	CountActiveRentals(ctx context.Context, customerID string) (int32, error)
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	List(ctx context.Context, status string) ([]domain.Vehicle, error)
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	UpdateStatus(ctx context.Context, id string, status domain.VehicleStatus) error
	ListWithDocumentsDueBy(ctx context.Context, cutoff time.Time) ([]domain.Vehicle, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id string) (*domain.Rental, error)
	Update(ctx context.Context, rental *domain.Rental) error
	ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Rental, error)
	ActivateStartedBy(ctx context.Context, asOf time.Time) (int64, error)
	// DeleteCascade removes the rental and all dependent rows (allocations,
	// payments, charges, reminders, invoices) in a single transaction.
	DeleteCascade(ctx context.Context, id string) error
}

type ChargeRepository interface {
	// Create inserts the charge, relying on the (rental_id, due_date) unique
	// constraint: if a charge for that period already exists the insert is a
	// no-op and Create returns (false, nil).
	Create(ctx context.Context, charge *domain.Charge) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Charge, error)
	ListByRental(ctx context.Context, rentalID string) ([]domain.Charge, error)
	LastDueDate(ctx context.Context, rentalID string) (*time.Time, error)
	ListOutstanding(ctx context.Context) ([]domain.Charge, error)
	MarkOverdueBefore(ctx context.Context, asOf time.Time) (int64, error)
}

// AllocationTx is the unit of work for applying one payment. All calls run
// inside a single database transaction; OutstandingCharges takes row locks so
// two payments cannot drain the same charge balance.
type AllocationTx interface {
	// OutstandingCharges returns Open/PartiallyPaid/Overdue charges for the
	// rental, or for every rental of the customer when rentalID is nil,
	// ordered by due date then creation order, locked for update.
	OutstandingCharges(ctx context.Context, customerID string, rentalID *string) ([]domain.Charge, error)
	InsertAllocation(ctx context.Context, alloc *domain.Allocation) error
	// DecrementOutstanding applies a compare-and-set: the update only matches
	// when amount_outstanding still equals expected. Zero rows updated means a
	// concurrent writer got there first.
	DecrementOutstanding(ctx context.Context, chargeID string, expected, amount decimal.Decimal, status domain.ChargeStatus) error
	MarkPaymentProcessed(ctx context.Context, paymentID string) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Payment, error)
	ListAllocations(ctx context.Context, paymentID string) ([]domain.Allocation, error)
	// InTx runs fn inside one transaction, committing on nil and rolling back
	// on error.
	InTx(ctx context.Context, fn func(tx AllocationTx) error) error
	// DeleteWithAllocations removes the payment and its allocations, restoring
	// each charge's outstanding amount, in one transaction.
	DeleteWithAllocations(ctx context.Context, id string) error
}

// LedgerTotals is the read-model shape shared by rental and customer views.
type LedgerTotals struct {
	TotalCharges  decimal.Decimal `json:"total_charges"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	Outstanding   decimal.Decimal `json:"outstanding"`
}

type LedgerRepository interface {
	// RentalTotals sums charge amounts and allocation amounts for one rental.
	// sumOutstanding is the independent sum of charge.amount_outstanding used
	// by the caller to detect drift.
	RentalTotals(ctx context.Context, rentalID string) (totals *LedgerTotals, sumOutstanding decimal.Decimal, err error)
	CustomerTotals(ctx context.Context, customerID string) (totals *LedgerTotals, sumOutstanding decimal.Decimal, err error)
}

type ReminderRepository interface {
	// Create inserts the reminder unless one already exists for the same
	// (object_type, object_id, rule_code, due_on); returns false then.
	Create(ctx context.Context, reminder *domain.Reminder) (bool, error)
	ListPending(ctx context.Context, remindOnOrBefore time.Time) ([]domain.Reminder, error)
	List(ctx context.Context, status string, limit, offset int32) ([]domain.Reminder, int32, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error)
	// NextSequence returns the next per-month invoice sequence number for the
	// given YYYYMM prefix.
	NextSequence(ctx context.Context, yearMonth string) (int32, error)
}
