package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/logger"
	"fleetledger-backend/internal/repository"
)

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	vehicleRepo  repository.VehicleRepository
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	vehicleRepo repository.VehicleRepository,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		vehicleRepo:  vehicleRepo,
	}
}

// CreateInvoice issues an invoice numbered INV-YYYYMM-XXXX, where XXXX is a
// per-month sequence. Customer and vehicle details are snapshotted onto the
// invoice at issue time.
func (s *invoiceService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error) {
	logger.EnterMethod("invoiceService.CreateInvoice", "customerID", input.CustomerID)

	if len(input.LineItems) == 0 {
		return nil, fmt.Errorf("invoice needs at least one line item: %w", domain.ErrInvalidInput)
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for i := range input.LineItems {
		item := &input.LineItems[i]
		if item.Amount.IsZero() {
			item.Amount = item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity))
		}
		subtotal = subtotal.Add(item.Amount)
	}
	taxAmount := subtotal.Mul(input.TaxRate).Round(2)

	dueDate := input.DueDate
	if dueDate.IsZero() {
		dueDate = input.IssueDate.AddDate(0, 0, 30)
	}

	invoice := &domain.Invoice{
		RentalID:        input.RentalID,
		CustomerID:      input.CustomerID,
		VehicleID:       input.VehicleID,
		IssueDate:       input.IssueDate,
		DueDate:         dueDate,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerAddress: customer.Address,
		LineItems:       input.LineItems,
		Subtotal:        subtotal,
		TaxRate:         input.TaxRate,
		TaxAmount:       taxAmount,
		TotalAmount:     subtotal.Add(taxAmount),
		Status:          domain.InvoiceStatusIssued,
		Notes:           input.Notes,
	}
	if input.VehicleID != nil {
		vehicle, err := s.vehicleRepo.GetByID(ctx, *input.VehicleID)
		if err != nil {
			return nil, err
		}
		invoice.VehicleReg = vehicle.Reg
		invoice.VehicleMake = vehicle.Make
		invoice.VehicleModel = vehicle.Model
	}

	// A concurrent CreateInvoice can mint the same per-month number; the unique
	// index on invoice_number rejects the loser, which re-reads the sequence.
	yearMonth := input.IssueDate.Format("200601")
	for attempt := 0; ; attempt++ {
		seq, err := s.invoiceRepo.NextSequence(ctx, yearMonth)
		if err != nil {
			return nil, err
		}
		invoice.InvoiceNumber = fmt.Sprintf("INV-%s-%04d", yearMonth, seq)

		err = s.invoiceRepo.Create(ctx, invoice)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrConcurrentModification) && attempt < 2 {
			continue
		}
		logger.ExitMethodWithError("invoiceService.CreateInvoice", err, "customerID", input.CustomerID)
		return nil, err
	}

	logger.ExitMethod("invoiceService.CreateInvoice", "invoiceNumber", invoice.InvoiceNumber)
	return invoice, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, id)
}

func (s *invoiceService) ListByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error) {
	return s.invoiceRepo.ListByCustomer(ctx, customerID)
}
