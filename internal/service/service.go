package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/repository"
)

// BillingService generates rental charges, one per billing period.
type BillingService interface {
	GenerateInitialCharge(ctx context.Context, rental *domain.Rental) (*domain.Charge, error)
	// RolloverCharges creates one charge per whole billing period elapsed up to
	// asOf that is not yet represented, never beyond the rental's end date.
	RolloverCharges(ctx context.Context, rental *domain.Rental, asOf time.Time) ([]domain.Charge, error)
}

// PaymentService records payments and allocates them against outstanding
// charges, oldest debt first.
type PaymentService interface {
	RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Payment, error)
	// ApplyPayment is exactly-once per payment: re-invoking on a processed
	// payment returns the existing allocations without touching the ledger.
	ApplyPayment(ctx context.Context, paymentID string) ([]domain.Allocation, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, []domain.Allocation, error)
	DeletePayment(ctx context.Context, id string) error
}

type RecordPaymentInput struct {
	CustomerID  string
	RentalID    *string
	VehicleID   *string
	Amount      decimal.Decimal
	PaymentDate time.Time
	Type        domain.PaymentType
	Method      string
}

// LedgerService derives summary figures from charges and allocations.
type LedgerService interface {
	GetRentalTotals(ctx context.Context, rentalID string) (*repository.LedgerTotals, error)
	GetCustomerNetPosition(ctx context.Context, customerID string) (*repository.LedgerTotals, error)
}

// ReminderService derives reminder records from ledger and vehicle state.
// Delivery is the dispatcher's job, not the deriver's.
type ReminderService interface {
	DeriveReminders(ctx context.Context, asOf time.Time) ([]domain.Reminder, error)
	ListReminders(ctx context.Context, status string, page, pageSize int32) ([]domain.Reminder, int32, error)
	ListPending(ctx context.Context, asOf time.Time) ([]domain.Reminder, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
}

type RentalService interface {
	CreateRental(ctx context.Context, input CreateRentalInput, asOf time.Time) (*domain.Rental, *domain.Invoice, error)
	GetRental(ctx context.Context, id string) (*domain.Rental, error)
	ListCharges(ctx context.Context, rentalID string) ([]domain.Charge, error)
	CloseRental(ctx context.Context, rentalID string, asOf time.Time) (*domain.Rental, error)
	DeleteRental(ctx context.Context, rentalID string) error
}

type CreateRentalInput struct {
	CustomerID     string
	VehicleID      string
	StartDate      time.Time
	EndDate        *time.Time
	Cadence        domain.BillingCadence
	PeriodicAmount decimal.Decimal
	InitialFee     decimal.Decimal
}

type InvoiceService interface {
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error)
}

type CreateInvoiceInput struct {
	RentalID   *string
	CustomerID string
	VehicleID  *string
	IssueDate  time.Time
	DueDate    time.Time
	LineItems  []domain.InvoiceLineItem
	TaxRate    decimal.Decimal
	Notes      string
}

// EmailService is the outbound delivery collaborator. Reminder creation never
// depends on delivery succeeding.
type EmailService interface {
	SendReminderEmail(ctx context.Context, toEmail, toName string, reminder *domain.Reminder) error
	SendAdminNotification(ctx context.Context, subject, message string) error
}
