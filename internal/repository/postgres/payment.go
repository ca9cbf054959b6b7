package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/logger"
	"fleetledger-backend/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, customer_id, rental_id, vehicle_id, amount, payment_date, type, COALESCE(method, ''), processed, created_on`

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	p.ID = uuid.NewString()
	now := time.Now()
	query := `INSERT INTO payments (id, customer_id, rental_id, vehicle_id, amount, payment_date, type, method, processed, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, $9)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.CustomerID, p.RentalID, p.VehicleID, p.Amount, p.PaymentDate, p.Type, p.Method, now)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	p.Processed = false
	p.CreatedOn = now
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	p := &domain.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.CustomerID, &p.RentalID, &p.VehicleID, &p.Amount, &p.PaymentDate, &p.Type, &p.Method, &p.Processed, &p.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE customer_id = $1 ORDER BY payment_date DESC, created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.RentalID, &p.VehicleID, &p.Amount, &p.PaymentDate, &p.Type, &p.Method, &p.Processed, &p.CreatedOn); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) ListAllocations(ctx context.Context, paymentID string) ([]domain.Allocation, error) {
	query := `SELECT id, payment_id, charge_id, amount, created_on FROM payment_allocations
	          WHERE payment_id = $1 ORDER BY created_on ASC`
	rows, err := r.db.QueryContext(ctx, query, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocs []domain.Allocation
	for rows.Next() {
		var a domain.Allocation
		if err := rows.Scan(&a.ID, &a.PaymentID, &a.ChargeID, &a.Amount, &a.CreatedOn); err != nil {
			return nil, err
		}
		allocs = append(allocs, a)
	}
	return allocs, rows.Err()
}

// InTx runs fn against an allocationTx bound to one database transaction.
func (r *paymentRepository) InTx(ctx context.Context, fn func(tx repository.AllocationTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&allocationTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteWithAllocations reverses a payment: charge outstanding amounts are
// restored before the allocation rows disappear.
func (r *paymentRepository) DeleteWithAllocations(ctx context.Context, id string) error {
	logger.EnterMethod("paymentRepository.DeleteWithAllocations", "paymentID", id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	restore := `UPDATE rental_charges c
	            SET amount_outstanding = c.amount_outstanding + a.amount,
	                status = CASE WHEN c.amount_outstanding + a.amount >= c.amount THEN 'Open' ELSE 'PartiallyPaid' END
	            FROM payment_allocations a
	            WHERE a.charge_id = c.id AND a.payment_id = $1`
	if _, err := tx.ExecContext(ctx, restore, id); err != nil {
		logger.ExitMethodWithError("paymentRepository.DeleteWithAllocations", err, "paymentID", id)
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM payment_allocations WHERE payment_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("payment %s: %w", id, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("paymentRepository.DeleteWithAllocations", "paymentID", id)
	return nil
}

// allocationTx implements repository.AllocationTx over a single *sql.Tx.
type allocationTx struct {
	tx *sql.Tx
}

func (t *allocationTx) OutstandingCharges(ctx context.Context, customerID string, rentalID *string) ([]domain.Charge, error) {
	var (
		query string
		arg   interface{}
	)
	if rentalID != nil {
		query = `SELECT ` + chargeColumns + ` FROM rental_charges
		         WHERE rental_id = $1 AND status IN ('Open', 'PartiallyPaid', 'Overdue') AND amount_outstanding > 0
		         ORDER BY due_date ASC, created_on ASC
		         FOR UPDATE`
		arg = *rentalID
	} else {
		query = `SELECT ` + chargeColumns + ` FROM rental_charges
		         WHERE rental_id IN (SELECT id FROM rentals WHERE customer_id = $1)
		           AND status IN ('Open', 'PartiallyPaid', 'Overdue') AND amount_outstanding > 0
		         ORDER BY due_date ASC, created_on ASC
		         FOR UPDATE`
		arg = customerID
	}

	rows, err := t.tx.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCharges(rows)
}

func (t *allocationTx) InsertAllocation(ctx context.Context, a *domain.Allocation) error {
	a.ID = uuid.NewString()
	now := time.Now()
	query := `INSERT INTO payment_allocations (id, payment_id, charge_id, amount, created_on)
	          VALUES ($1, $2, $3, $4, $5)`
	if _, err := t.tx.ExecContext(ctx, query, a.ID, a.PaymentID, a.ChargeID, a.Amount, now); err != nil {
		return fmt.Errorf("insert allocation: %w", err)
	}
	a.CreatedOn = now
	return nil
}

// DecrementOutstanding only matches while amount_outstanding still equals
// expected; zero rows updated means another writer changed the charge since it
// was read, and the whole allocation must be retried.
func (t *allocationTx) DecrementOutstanding(ctx context.Context, chargeID string, expected, amount decimal.Decimal, status domain.ChargeStatus) error {
	query := `UPDATE rental_charges
	          SET amount_outstanding = amount_outstanding - $1, status = $2
	          WHERE id = $3 AND amount_outstanding = $4`
	res, err := t.tx.ExecContext(ctx, query, amount, status, chargeID, expected)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("charge %s outstanding changed: %w", chargeID, domain.ErrConcurrentModification)
	}
	return nil
}

func (t *allocationTx) MarkPaymentProcessed(ctx context.Context, paymentID string) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE payments SET processed = true WHERE id = $1 AND NOT processed`, paymentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("payment %s: %w", paymentID, domain.ErrAlreadyProcessed)
	}
	return nil
}
