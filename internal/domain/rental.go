package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalStatusUpcoming RentalStatus = "Upcoming"
	RentalStatusActive   RentalStatus = "Active"
	RentalStatusClosed   RentalStatus = "Closed"
)

type BillingCadence string

const (
	CadenceDaily   BillingCadence = "Daily"
	CadenceWeekly  BillingCadence = "Weekly"
	CadenceMonthly BillingCadence = "Monthly"
)

// ValidCadence reports whether c is one of the three supported cadences.
func ValidCadence(c BillingCadence) bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadenceMonthly:
		return true
	}
	return false
}

type Rental struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	VehicleID  string    `json:"vehicle_id"`
	StartDate  time.Time `json:"start_date"`
	// EndDate is nil for open-ended rentals; charges are then generated only
	// up to the current period, never ahead.
	EndDate        *time.Time      `json:"end_date,omitempty"`
	Cadence        BillingCadence  `json:"cadence"`
	PeriodicAmount decimal.Decimal `json:"periodic_amount"`
	Status         RentalStatus    `json:"status"`
	CreatedOn      time.Time       `json:"created_on"`
	UpdatedOn      time.Time       `json:"updated_on"`
}
