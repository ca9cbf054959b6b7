package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type VehicleStatus string

const (
	VehicleStatusAvailable VehicleStatus = "Available"
	VehicleStatusRented    VehicleStatus = "Rented"
	VehicleStatusSold      VehicleStatus = "Sold"
)

// VehicleDocument identifies a dated compliance document on a vehicle.
// Expiry dates feed the reminder deriver.
type VehicleDocument string

const (
	VehicleDocumentMOT       VehicleDocument = "MOT"
	VehicleDocumentTax       VehicleDocument = "Tax"
	VehicleDocumentInsurance VehicleDocument = "Insurance"
	VehicleDocumentWarranty  VehicleDocument = "Warranty"
)

type Vehicle struct {
	ID           string          `json:"id"`
	Reg          string          `json:"reg"`
	Make         string          `json:"make"`
	Model        string          `json:"model"`
	DailyRate    decimal.Decimal `json:"daily_rate"`
	WeeklyRate   decimal.Decimal `json:"weekly_rate"`
	MonthlyRate  decimal.Decimal `json:"monthly_rate"`
	Status       VehicleStatus   `json:"status"`
	MOTDue       *time.Time      `json:"mot_due,omitempty"`
	TaxDue       *time.Time      `json:"tax_due,omitempty"`
	InsuranceDue *time.Time      `json:"insurance_due,omitempty"`
	WarrantyDue  *time.Time      `json:"warranty_due,omitempty"`
	CreatedOn    time.Time       `json:"created_on"`
	UpdatedOn    time.Time       `json:"updated_on"`
}

// DocumentDueDates returns the non-nil document expiry dates keyed by document type.
func (v *Vehicle) DocumentDueDates() map[VehicleDocument]time.Time {
	dates := make(map[VehicleDocument]time.Time)
	if v.MOTDue != nil {
		dates[VehicleDocumentMOT] = *v.MOTDue
	}
	if v.TaxDue != nil {
		dates[VehicleDocumentTax] = *v.TaxDue
	}
	if v.InsuranceDue != nil {
		dates[VehicleDocumentInsurance] = *v.InsuranceDue
	}
	if v.WarrantyDue != nil {
		dates[VehicleDocumentWarranty] = *v.WarrantyDue
	}
	return dates
}
