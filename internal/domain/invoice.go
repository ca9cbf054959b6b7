package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusIssued InvoiceStatus = "Issued"
	InvoiceStatusPaid   InvoiceStatus = "Paid"
	InvoiceStatusVoid   InvoiceStatus = "Void"
)

type InvoiceLineItem struct {
	Description string          `json:"description"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Invoice snapshots customer and vehicle details at issue time so later edits
// to those records do not rewrite history.
type Invoice struct {
	ID              string            `json:"id"`
	InvoiceNumber   string            `json:"invoice_number"` // INV-YYYYMM-XXXX
	RentalID        *string           `json:"rental_id,omitempty"`
	CustomerID      string            `json:"customer_id"`
	VehicleID       *string           `json:"vehicle_id,omitempty"`
	IssueDate       time.Time         `json:"issue_date"`
	DueDate         time.Time         `json:"due_date"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerAddress string            `json:"customer_address"`
	VehicleReg      string            `json:"vehicle_reg"`
	VehicleMake     string            `json:"vehicle_make"`
	VehicleModel    string            `json:"vehicle_model"`
	LineItems       []InvoiceLineItem `json:"line_items"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	TaxRate         decimal.Decimal   `json:"tax_rate"`
	TaxAmount       decimal.Decimal   `json:"tax_amount"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	Status          InvoiceStatus     `json:"status"`
	Notes           string            `json:"notes"`
	CreatedOn       time.Time         `json:"created_on"`
	UpdatedOn       time.Time         `json:"updated_on"`
}
