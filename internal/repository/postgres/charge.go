package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/repository"
)

type chargeRepository struct {
	db *sql.DB
}

func NewChargeRepository(db *sql.DB) repository.ChargeRepository {
	return &chargeRepository{db: db}
}

const chargeColumns = `id, rental_id, due_date, amount, amount_outstanding, status, created_on`

// Create inserts the charge. The (rental_id, due_date) unique constraint makes
// period generation idempotent: a conflicting insert returns (false, nil).
func (r *chargeRepository) Create(ctx context.Context, c *domain.Charge) (bool, error) {
	c.ID = uuid.NewString()
	now := time.Now()
	query := `INSERT INTO rental_charges (id, rental_id, due_date, amount, amount_outstanding, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (rental_id, due_date) DO NOTHING
	          RETURNING id`
	var id string
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.RentalID, c.DueDate, c.Amount, c.AmountOutstanding, c.Status, now).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert charge: %w", err)
	}
	c.CreatedOn = now
	return true, nil
}

func (r *chargeRepository) GetByID(ctx context.Context, id string) (*domain.Charge, error) {
	c := &domain.Charge{}
	query := `SELECT ` + chargeColumns + ` FROM rental_charges WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.RentalID, &c.DueDate, &c.Amount, &c.AmountOutstanding, &c.Status, &c.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("charge %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *chargeRepository) ListByRental(ctx context.Context, rentalID string) ([]domain.Charge, error) {
	query := `SELECT ` + chargeColumns + ` FROM rental_charges WHERE rental_id = $1 ORDER BY due_date ASC`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCharges(rows)
}

func (r *chargeRepository) LastDueDate(ctx context.Context, rentalID string) (*time.Time, error) {
	var due sql.NullTime
	query := `SELECT MAX(due_date) FROM rental_charges WHERE rental_id = $1`
	if err := r.db.QueryRowContext(ctx, query, rentalID).Scan(&due); err != nil {
		return nil, err
	}
	if !due.Valid {
		return nil, nil
	}
	return &due.Time, nil
}

func (r *chargeRepository) ListOutstanding(ctx context.Context) ([]domain.Charge, error) {
	query := `SELECT ` + chargeColumns + ` FROM rental_charges
	          WHERE status IN ('Open', 'PartiallyPaid', 'Overdue') AND amount_outstanding > 0
	          ORDER BY due_date ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCharges(rows)
}

func (r *chargeRepository) MarkOverdueBefore(ctx context.Context, asOf time.Time) (int64, error) {
	query := `UPDATE rental_charges SET status = 'Overdue' WHERE due_date < $1 AND status IN ('Open', 'PartiallyPaid')`
	res, err := r.db.ExecContext(ctx, query, asOf)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanCharges(rows *sql.Rows) ([]domain.Charge, error) {
	var charges []domain.Charge
	for rows.Next() {
		var c domain.Charge
		if err := rows.Scan(&c.ID, &c.RentalID, &c.DueDate, &c.Amount, &c.AmountOutstanding, &c.Status, &c.CreatedOn); err != nil {
			return nil, err
		}
		charges = append(charges, c)
	}
	return charges, rows.Err()
}
