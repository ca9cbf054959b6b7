package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"fleetledger-backend/internal/repository"
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

// RentalTotals reads all three figures inside one repeatable-read transaction
// so the drift check in the service compares a consistent snapshot even while
// allocations are in flight.
func (r *ledgerRepository) RentalTotals(ctx context.Context, rentalID string) (*repository.LedgerTotals, decimal.Decimal, error) {
	chargeQuery := `SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(amount_outstanding), 0)
	                FROM rental_charges WHERE rental_id = $1`
	allocQuery := `SELECT COALESCE(SUM(a.amount), 0)
	               FROM payment_allocations a
	               JOIN rental_charges c ON a.charge_id = c.id
	               WHERE c.rental_id = $1`
	return r.totals(ctx, chargeQuery, allocQuery, rentalID)
}

// CustomerTotals is the same shape summed across every rental of the customer.
// Allocations are grouped by the charge's rental, not the raw payment, so a
// customer-level payment that spanned rentals still lands in the right bucket.
func (r *ledgerRepository) CustomerTotals(ctx context.Context, customerID string) (*repository.LedgerTotals, decimal.Decimal, error) {
	chargeQuery := `SELECT COALESCE(SUM(c.amount), 0), COALESCE(SUM(c.amount_outstanding), 0)
	                FROM rental_charges c
	                JOIN rentals r ON c.rental_id = r.id
	                WHERE r.customer_id = $1`
	allocQuery := `SELECT COALESCE(SUM(a.amount), 0)
	               FROM payment_allocations a
	               JOIN rental_charges c ON a.charge_id = c.id
	               JOIN rentals r ON c.rental_id = r.id
	               WHERE r.customer_id = $1`
	return r.totals(ctx, chargeQuery, allocQuery, customerID)
}

func (r *ledgerRepository) totals(ctx context.Context, chargeQuery, allocQuery, id string) (*repository.LedgerTotals, decimal.Decimal, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer tx.Rollback()

	var totalCharges, sumOutstanding decimal.Decimal
	if err := tx.QueryRowContext(ctx, chargeQuery, id).Scan(&totalCharges, &sumOutstanding); err != nil {
		return nil, decimal.Zero, err
	}

	var totalPayments decimal.Decimal
	if err := tx.QueryRowContext(ctx, allocQuery, id).Scan(&totalPayments); err != nil {
		return nil, decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return nil, decimal.Zero, err
	}

	return &repository.LedgerTotals{
		TotalCharges:  totalCharges,
		TotalPayments: totalPayments,
		Outstanding:   totalCharges.Sub(totalPayments),
	}, sumOutstanding, nil
}
