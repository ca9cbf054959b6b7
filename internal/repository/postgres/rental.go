package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/logger"
	"fleetledger-backend/internal/repository"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, customer_id, vehicle_id, start_date, end_date, cadence, periodic_amount, status, created_on, updated_on`

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	rt.ID = uuid.NewString()
	now := time.Now()
	query := `INSERT INTO rentals (id, customer_id, vehicle_id, start_date, end_date, cadence, periodic_amount, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		rt.ID, rt.CustomerID, rt.VehicleID, rt.StartDate, rt.EndDate, rt.Cadence, rt.PeriodicAmount, rt.Status, now, now)
	if err != nil {
		return fmt.Errorf("insert rental: %w", err)
	}
	rt.CreatedOn = now
	rt.UpdatedOn = now
	return nil
}

func (r *rentalRepository) scanRental(scan func(dest ...interface{}) error) (*domain.Rental, error) {
	rt := &domain.Rental{}
	err := scan(&rt.ID, &rt.CustomerID, &rt.VehicleID, &rt.StartDate, &rt.EndDate,
		&rt.Cadence, &rt.PeriodicAmount, &rt.Status, &rt.CreatedOn, &rt.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	rt, err := r.scanRental(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rental %s: %w", id, domain.ErrNotFound)
	}
	return rt, err
}

func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	query := `UPDATE rentals SET end_date=$1, status=$2, periodic_amount=$3, updated_on=$4 WHERE id=$5`
	_, err := r.db.ExecContext(ctx, query, rt.EndDate, rt.Status, rt.PeriodicAmount, time.Now(), rt.ID)
	return err
}

func (r *rentalRepository) ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status = $1 ORDER BY start_date ASC`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := r.scanRental(rows.Scan)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE customer_id = $1 ORDER BY start_date DESC`
	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := r.scanRental(rows.Scan)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) ActivateStartedBy(ctx context.Context, asOf time.Time) (int64, error) {
	query := `UPDATE rentals SET status='Active', updated_on=NOW() WHERE status='Upcoming' AND start_date <= $1`
	res, err := r.db.ExecContext(ctx, query, asOf)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteCascade removes a rental and every dependent row in one transaction.
// Order matters: reminders reference charge ids, allocations reference both
// payments and charges.
func (r *rentalRepository) DeleteCascade(ctx context.Context, id string) error {
	logger.EnterMethod("rentalRepository.DeleteCascade", "rentalID", id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	steps := []string{
		`DELETE FROM reminders WHERE (object_type = 'Rental' AND object_id = $1)
		    OR (object_type = 'Charge' AND object_id IN (SELECT id FROM rental_charges WHERE rental_id = $1))`,
		`DELETE FROM payment_allocations WHERE charge_id IN (SELECT id FROM rental_charges WHERE rental_id = $1)
		    OR payment_id IN (SELECT id FROM payments WHERE rental_id = $1)`,
		`DELETE FROM payments WHERE rental_id = $1`,
		`DELETE FROM rental_charges WHERE rental_id = $1`,
		`DELETE FROM invoices WHERE rental_id = $1`,
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step, id); err != nil {
			logger.ExitMethodWithError("rentalRepository.DeleteCascade", err, "rentalID", id)
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.DeleteCascade", err, "rentalID", id)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("rental %s: %w", id, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("rentalRepository.DeleteCascade", "rentalID", id)
	return nil
}
