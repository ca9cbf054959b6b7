package service

import (
	"context"
	"fmt"

	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/logger"
	"fleetledger-backend/internal/repository"
)

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
}

func NewLedgerService(ledgerRepo repository.LedgerRepository) LedgerService {
	return &ledgerService{ledgerRepo: ledgerRepo}
}

// GetRentalTotals returns charged/paid/outstanding figures for one rental.
// The outstanding figure is derived as charges minus payments; if the sum of
// per-charge outstanding balances disagrees, allocations have drifted from
// charge balances and the read fails loudly rather than reporting a wrong
// number.
func (s *ledgerService) GetRentalTotals(ctx context.Context, rentalID string) (*repository.LedgerTotals, error) {
	totals, sumOutstanding, err := s.ledgerRepo.RentalTotals(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !totals.Outstanding.Equal(sumOutstanding) {
		err := fmt.Errorf("rental %s: derived outstanding %s, per-charge sum %s: %w",
			rentalID, totals.Outstanding, sumOutstanding, domain.ErrLedgerDrift)
		logger.Error("ledger drift detected", "rentalID", rentalID, "error", err)
		return nil, err
	}
	return totals, nil
}

// GetCustomerNetPosition is GetRentalTotals summed across all of the
// customer's rentals.
func (s *ledgerService) GetCustomerNetPosition(ctx context.Context, customerID string) (*repository.LedgerTotals, error) {
	totals, sumOutstanding, err := s.ledgerRepo.CustomerTotals(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !totals.Outstanding.Equal(sumOutstanding) {
		err := fmt.Errorf("customer %s: derived outstanding %s, per-charge sum %s: %w",
			customerID, totals.Outstanding, sumOutstanding, domain.ErrLedgerDrift)
		logger.Error("ledger drift detected", "customerID", customerID, "error", err)
		return nil, err
	}
	return totals, nil
}
