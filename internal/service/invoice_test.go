package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fleetledger-backend/internal/domain"
)

func TestInvoiceService_CreateInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("Numbers, totals and snapshots", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepo)
		customerRepo := new(MockCustomerRepo)
		vehicleRepo := new(MockVehicleRepo)
		svc := NewInvoiceService(invoiceRepo, customerRepo, vehicleRepo)

		customerRepo.On("GetByID", ctx, "cust-1").
			Return(&domain.Customer{ID: "cust-1", Name: "Acme Couriers", Email: "ap@acme.test"}, nil).Once()
		invoiceRepo.On("NextSequence", ctx, "202403").Return(int32(7), nil).Once()
		invoiceRepo.On("Create", ctx, mock.MatchedBy(func(inv *domain.Invoice) bool {
			return inv.InvoiceNumber == "INV-202403-0007" &&
				inv.Subtotal.Equal(dec(1000)) &&
				inv.TaxAmount.Equal(dec(200)) &&
				inv.TotalAmount.Equal(dec(1200)) &&
				inv.CustomerName == "Acme Couriers" &&
				inv.DueDate.Equal(date(2024, 3, 31)) &&
				inv.Status == domain.InvoiceStatusIssued
		})).Return(nil).Once()

		invoice, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
			CustomerID: "cust-1",
			IssueDate:  date(2024, 3, 1),
			TaxRate:    decimal.NewFromFloat(0.20),
			LineItems: []domain.InvoiceLineItem{
				{Description: "Monthly rental", Quantity: 1, UnitPrice: dec(800), Amount: dec(800)},
				{Description: "Initial fee", Quantity: 1, UnitPrice: dec(200), Amount: dec(200)},
			},
		})
		assert.NoError(t, err)
		assert.Equal(t, "INV-202403-0007", invoice.InvoiceNumber)
		invoiceRepo.AssertExpectations(t)
	})

	t.Run("Line amount derived from quantity and unit price", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepo)
		customerRepo := new(MockCustomerRepo)
		svc := NewInvoiceService(invoiceRepo, customerRepo, new(MockVehicleRepo))

		customerRepo.On("GetByID", ctx, "cust-1").Return(&domain.Customer{ID: "cust-1"}, nil).Once()
		invoiceRepo.On("NextSequence", ctx, "202401").Return(int32(1), nil).Once()
		invoiceRepo.On("Create", ctx, mock.MatchedBy(func(inv *domain.Invoice) bool {
			return inv.Subtotal.Equal(dec(150)) && inv.LineItems[0].Amount.Equal(dec(150))
		})).Return(nil).Once()

		_, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
			CustomerID: "cust-1",
			IssueDate:  date(2024, 1, 10),
			LineItems: []domain.InvoiceLineItem{
				{Description: "Daily rental", Quantity: 3, UnitPrice: dec(50)},
			},
		})
		assert.NoError(t, err)
	})

	t.Run("Retries with a fresh sequence when the number is taken", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepo)
		customerRepo := new(MockCustomerRepo)
		svc := NewInvoiceService(invoiceRepo, customerRepo, new(MockVehicleRepo))

		customerRepo.On("GetByID", ctx, "cust-1").Return(&domain.Customer{ID: "cust-1"}, nil).Once()
		invoiceRepo.On("NextSequence", ctx, "202403").Return(int32(7), nil).Once()
		invoiceRepo.On("Create", ctx, mock.MatchedBy(func(inv *domain.Invoice) bool {
			return inv.InvoiceNumber == "INV-202403-0007"
		})).Return(fmt.Errorf("invoice number INV-202403-0007 already taken: %w", domain.ErrConcurrentModification)).Once()
		invoiceRepo.On("NextSequence", ctx, "202403").Return(int32(8), nil).Once()
		invoiceRepo.On("Create", ctx, mock.MatchedBy(func(inv *domain.Invoice) bool {
			return inv.InvoiceNumber == "INV-202403-0008"
		})).Return(nil).Once()

		invoice, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
			CustomerID: "cust-1",
			IssueDate:  date(2024, 3, 1),
			LineItems: []domain.InvoiceLineItem{
				{Description: "Monthly rental", Quantity: 1, UnitPrice: dec(800), Amount: dec(800)},
			},
		})
		assert.NoError(t, err)
		assert.Equal(t, "INV-202403-0008", invoice.InvoiceNumber)
		invoiceRepo.AssertExpectations(t)
	})

	t.Run("Empty line items rejected", func(t *testing.T) {
		svc := NewInvoiceService(new(MockInvoiceRepo), new(MockCustomerRepo), new(MockVehicleRepo))

		_, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
			CustomerID: "cust-1",
			IssueDate:  date(2024, 1, 10),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
