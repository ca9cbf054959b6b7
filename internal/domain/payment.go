package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypeInitialFee PaymentType = "InitialFee"
	PaymentTypeRental     PaymentType = "Rental"
	PaymentTypeFine       PaymentType = "Fine"
	PaymentTypeOther      PaymentType = "Other"
)

// Payment is immutable once recorded except for the Processed flag, which the
// allocator flips exactly once.
type Payment struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customer_id"`
	RentalID    *string         `json:"rental_id,omitempty"`
	VehicleID   *string         `json:"vehicle_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Type        PaymentType     `json:"type"`
	Method      string          `json:"method"`
	Processed   bool            `json:"processed"`
	CreatedOn   time.Time       `json:"created_on"`
}

// Allocation links a payment to a charge. Append-only; reversal happens by
// deleting the owning payment, which restores charge outstanding amounts.
type Allocation struct {
	ID        string          `json:"id"`
	PaymentID string          `json:"payment_id"`
	ChargeID  string          `json:"charge_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedOn time.Time       `json:"created_on"`
}
