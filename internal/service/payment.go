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

type paymentService struct {
	paymentRepo  repository.PaymentRepository
	customerRepo repository.CustomerRepository
}

func NewPaymentService(paymentRepo repository.PaymentRepository, customerRepo repository.CustomerRepository) PaymentService {
	return &paymentService{paymentRepo: paymentRepo, customerRepo: customerRepo}
}

func (s *paymentService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Payment, error) {
	logger.EnterMethod("paymentService.RecordPayment", "customerID", input.CustomerID, "amount", input.Amount.String())

	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be positive, got %s: %w", input.Amount, domain.ErrInvalidInput)
	}
	if input.PaymentDate.IsZero() {
		return nil, fmt.Errorf("payment date is required: %w", domain.ErrInvalidInput)
	}
	if _, err := s.customerRepo.GetByID(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		CustomerID:  input.CustomerID,
		RentalID:    input.RentalID,
		VehicleID:   input.VehicleID,
		Amount:      input.Amount,
		PaymentDate: input.PaymentDate,
		Type:        input.Type,
		Method:      input.Method,
	}
	if payment.Type == "" {
		payment.Type = domain.PaymentTypeRental
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		logger.ExitMethodWithError("paymentService.RecordPayment", err, "customerID", input.CustomerID)
		return nil, err
	}

	logger.ExitMethod("paymentService.RecordPayment", "paymentID", payment.ID)
	return payment, nil
}

// ApplyPayment allocates a recorded payment against outstanding charges,
// oldest due date first, inside one transaction. A rental-scoped payment only
// touches that rental's charges; otherwise every outstanding charge of the
// customer is eligible. Any amount left after the last outstanding charge
// stays unallocated on the payment.
//
// Calling ApplyPayment on an already-processed payment returns the existing
// allocations and changes nothing.
func (s *paymentService) ApplyPayment(ctx context.Context, paymentID string) ([]domain.Allocation, error) {
	logger.EnterMethod("paymentService.ApplyPayment", "paymentID", paymentID)

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Processed {
		logger.Info("payment already processed, returning existing allocations", "paymentID", paymentID)
		return s.paymentRepo.ListAllocations(ctx, paymentID)
	}
	if !payment.Amount.IsPositive() {
		return nil, fmt.Errorf("payment %s amount %s is not allocatable: %w", paymentID, payment.Amount, domain.ErrInvalidInput)
	}

	var allocations []domain.Allocation
	err = s.paymentRepo.InTx(ctx, func(tx repository.AllocationTx) error {
		charges, err := tx.OutstandingCharges(ctx, payment.CustomerID, payment.RentalID)
		if err != nil {
			return err
		}

		remaining := payment.Amount
		for i := range charges {
			if !remaining.IsPositive() {
				break
			}
			charge := &charges[i]
			allocated := decimalMin(remaining, charge.AmountOutstanding)

			alloc := domain.Allocation{
				PaymentID: payment.ID,
				ChargeID:  charge.ID,
				Amount:    allocated,
			}
			if err := tx.InsertAllocation(ctx, &alloc); err != nil {
				return err
			}

			newStatus := domain.ChargeStatusPartiallyPaid
			if charge.AmountOutstanding.Equal(allocated) {
				newStatus = domain.ChargeStatusPaid
			}
			if err := tx.DecrementOutstanding(ctx, charge.ID, charge.AmountOutstanding, allocated, newStatus); err != nil {
				return err
			}

			allocations = append(allocations, alloc)
			remaining = remaining.Sub(allocated)
		}

		return tx.MarkPaymentProcessed(ctx, payment.ID)
	})
	if errors.Is(err, domain.ErrAlreadyProcessed) {
		// Lost a race with another worker; its allocations are the answer.
		return s.paymentRepo.ListAllocations(ctx, paymentID)
	}
	if err != nil {
		logger.ExitMethodWithError("paymentService.ApplyPayment", err, "paymentID", paymentID)
		return nil, err
	}

	logger.ExitMethod("paymentService.ApplyPayment", "paymentID", paymentID, "allocations", len(allocations))
	return allocations, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*domain.Payment, []domain.Allocation, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	allocations, err := s.paymentRepo.ListAllocations(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return payment, allocations, nil
}

// DeletePayment reverses a mistaken payment. Allocated amounts flow back onto
// their charges before the payment row disappears.
func (s *paymentService) DeletePayment(ctx context.Context, id string) error {
	logger.EnterMethod("paymentService.DeletePayment", "paymentID", id)

	if _, err := s.paymentRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.paymentRepo.DeleteWithAllocations(ctx, id); err != nil {
		logger.ExitMethodWithError("paymentService.DeletePayment", err, "paymentID", id)
		return err
	}

	logger.ExitMethod("paymentService.DeletePayment", "paymentID", id)
	return nil
}

func decimalMin(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
