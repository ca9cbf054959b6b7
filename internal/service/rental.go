package service

import (
	"context"
	"fmt"
	"time"

	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/logger"
	"fleetledger-backend/internal/repository"
)

type rentalService struct {
	rentalRepo   repository.RentalRepository
	customerRepo repository.CustomerRepository
	vehicleRepo  repository.VehicleRepository
	chargeRepo   repository.ChargeRepository
	billing      BillingService
	payments     PaymentService
	invoices     InvoiceService
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	customerRepo repository.CustomerRepository,
	vehicleRepo repository.VehicleRepository,
	chargeRepo repository.ChargeRepository,
	billing BillingService,
	payments PaymentService,
	invoices InvoiceService,
) RentalService {
	return &rentalService{
		rentalRepo:   rentalRepo,
		customerRepo: customerRepo,
		vehicleRepo:  vehicleRepo,
		chargeRepo:   chargeRepo,
		billing:      billing,
		payments:     payments,
		invoices:     invoices,
	}
}

// CreateRental validates and creates a rental, then runs the opening
// sequence: first-period charge, optional initial fee recorded and allocated
// against it, vehicle marked rented, opening invoice issued. The rental
// starts Upcoming when its start date is in the future, Active otherwise.
func (s *rentalService) CreateRental(ctx context.Context, input CreateRentalInput, asOf time.Time) (*domain.Rental, *domain.Invoice, error) {
	logger.EnterMethod("rentalService.CreateRental", "customerID", input.CustomerID, "vehicleID", input.VehicleID)

	if err := s.validateCreate(ctx, input); err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err, "customerID", input.CustomerID)
		return nil, nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	if customer.Type == domain.CustomerTypeIndividual {
		active, err := s.customerRepo.CountActiveRentals(ctx, customer.ID)
		if err != nil {
			return nil, nil, err
		}
		if active > 0 {
			return nil, nil, fmt.Errorf("individual customer %s already holds a rental: %w", customer.ID, domain.ErrInvalidInput)
		}
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, input.VehicleID)
	if err != nil {
		return nil, nil, err
	}
	if vehicle.Status != domain.VehicleStatusAvailable {
		return nil, nil, fmt.Errorf("vehicle %s is %s, not available: %w", vehicle.ID, vehicle.Status, domain.ErrInvalidInput)
	}

	status := domain.RentalStatusActive
	if dateOnly(input.StartDate).After(dateOnly(asOf)) {
		status = domain.RentalStatusUpcoming
	}

	rental := &domain.Rental{
		CustomerID:     input.CustomerID,
		VehicleID:      input.VehicleID,
		StartDate:      dateOnly(input.StartDate),
		EndDate:        input.EndDate,
		Cadence:        input.Cadence,
		PeriodicAmount: input.PeriodicAmount,
		Status:         status,
	}
	if rental.EndDate != nil {
		d := dateOnly(*rental.EndDate)
		rental.EndDate = &d
	}
	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		return nil, nil, err
	}

	if _, err := s.billing.GenerateInitialCharge(ctx, rental); err != nil {
		return nil, nil, err
	}

	if input.InitialFee.IsPositive() {
		payment, err := s.payments.RecordPayment(ctx, RecordPaymentInput{
			CustomerID:  rental.CustomerID,
			RentalID:    &rental.ID,
			VehicleID:   &rental.VehicleID,
			Amount:      input.InitialFee,
			PaymentDate: rental.StartDate,
			Type:        domain.PaymentTypeInitialFee,
			Method:      "System",
		})
		if err != nil {
			return nil, nil, err
		}
		if _, err := s.payments.ApplyPayment(ctx, payment.ID); err != nil {
			return nil, nil, err
		}
	}

	if err := s.vehicleRepo.UpdateStatus(ctx, vehicle.ID, domain.VehicleStatusRented); err != nil {
		return nil, nil, err
	}

	invoice, err := s.issueOpeningInvoice(ctx, rental, vehicle, input)
	if err != nil {
		// The rental stands; the invoice can be raised again by hand.
		logger.Error("opening invoice failed", "rentalID", rental.ID, "error", err)
		invoice = nil
	}

	logger.ExitMethod("rentalService.CreateRental", "rentalID", rental.ID, "status", rental.Status)
	return rental, invoice, nil
}

func (s *rentalService) validateCreate(ctx context.Context, input CreateRentalInput) error {
	if !domain.ValidCadence(input.Cadence) {
		return fmt.Errorf("cadence %q: %w", input.Cadence, domain.ErrInvalidCadence)
	}
	if !input.PeriodicAmount.IsPositive() {
		return fmt.Errorf("periodic amount must be positive, got %s: %w", input.PeriodicAmount, domain.ErrInvalidInput)
	}
	if input.InitialFee.IsNegative() {
		return fmt.Errorf("initial fee cannot be negative: %w", domain.ErrInvalidInput)
	}
	if input.StartDate.IsZero() {
		return fmt.Errorf("start date is required: %w", domain.ErrInvalidInput)
	}
	if input.EndDate != nil {
		minEnd := periodDueDate(dateOnly(input.StartDate), input.Cadence, 1)
		if dateOnly(*input.EndDate).Before(minEnd) {
			return fmt.Errorf("end date %s is before the first full %s period ends: %w",
				input.EndDate.Format("2006-01-02"), input.Cadence, domain.ErrInvalidInput)
		}
	}
	return nil
}

func (s *rentalService) issueOpeningInvoice(ctx context.Context, rental *domain.Rental, vehicle *domain.Vehicle, input CreateRentalInput) (*domain.Invoice, error) {
	lineItems := []domain.InvoiceLineItem{
		{
			Description: fmt.Sprintf("%s rental of %s %s %s (%s)", rental.Cadence, vehicle.Reg, vehicle.Make, vehicle.Model, rental.StartDate.Format("2 Jan 2006")),
			Quantity:    1,
			UnitPrice:   rental.PeriodicAmount,
			Amount:      rental.PeriodicAmount,
		},
	}
	if input.InitialFee.IsPositive() {
		lineItems = append(lineItems, domain.InvoiceLineItem{
			Description: "Initial fee",
			Quantity:    1,
			UnitPrice:   input.InitialFee,
			Amount:      input.InitialFee,
		})
	}
	return s.invoices.CreateInvoice(ctx, CreateInvoiceInput{
		RentalID:   &rental.ID,
		CustomerID: rental.CustomerID,
		VehicleID:  &rental.VehicleID,
		IssueDate:  rental.StartDate,
		LineItems:  lineItems,
	})
}

func (s *rentalService) GetRental(ctx context.Context, id string) (*domain.Rental, error) {
	return s.rentalRepo.GetByID(ctx, id)
}

func (s *rentalService) ListCharges(ctx context.Context, rentalID string) ([]domain.Charge, error) {
	if _, err := s.rentalRepo.GetByID(ctx, rentalID); err != nil {
		return nil, err
	}
	return s.chargeRepo.ListByRental(ctx, rentalID)
}

// CloseRental ends the rental and frees the vehicle. Outstanding charges are
// untouched; the debt survives the rental.
func (s *rentalService) CloseRental(ctx context.Context, rentalID string, asOf time.Time) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.CloseRental", "rentalID", rentalID)

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status == domain.RentalStatusClosed {
		return rental, nil
	}

	rental.Status = domain.RentalStatusClosed
	if rental.EndDate == nil || dateOnly(*rental.EndDate).After(dateOnly(asOf)) {
		end := dateOnly(asOf)
		rental.EndDate = &end
	}
	if err := s.rentalRepo.Update(ctx, rental); err != nil {
		return nil, err
	}

	if err := s.vehicleRepo.UpdateStatus(ctx, rental.VehicleID, domain.VehicleStatusAvailable); err != nil {
		logger.ExitMethodWithError("rentalService.CloseRental", err, "rentalID", rentalID)
		return nil, err
	}

	logger.ExitMethod("rentalService.CloseRental", "rentalID", rentalID)
	return rental, nil
}

// DeleteRental erases the rental and everything hanging off it. Meant for
// rentals created in error, not for normal endings; use CloseRental for those.
func (s *rentalService) DeleteRental(ctx context.Context, rentalID string) error {
	logger.EnterMethod("rentalService.DeleteRental", "rentalID", rentalID)

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return err
	}
	if err := s.rentalRepo.DeleteCascade(ctx, rentalID); err != nil {
		logger.ExitMethodWithError("rentalService.DeleteRental", err, "rentalID", rentalID)
		return err
	}
	if rental.Status != domain.RentalStatusClosed {
		if err := s.vehicleRepo.UpdateStatus(ctx, rental.VehicleID, domain.VehicleStatusAvailable); err != nil {
			return err
		}
	}

	logger.ExitMethod("rentalService.DeleteRental", "rentalID", rentalID)
	return nil
}
