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

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

const vehicleColumns = `id, reg, make, model, daily_rate, weekly_rate, monthly_rate, status,
	       mot_due, tax_due, insurance_due, warranty_due, created_on, updated_on`

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	v.ID = uuid.NewString()
	now := time.Now()
	query := `INSERT INTO vehicles (id, reg, make, model, daily_rate, weekly_rate, monthly_rate, status,
	          mot_due, tax_due, insurance_due, warranty_due, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.Reg, v.Make, v.Model, v.DailyRate, v.WeeklyRate, v.MonthlyRate, v.Status,
		v.MOTDue, v.TaxDue, v.InsuranceDue, v.WarrantyDue, now, now)
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	v.CreatedOn = now
	v.UpdatedOn = now
	return nil
}

func (r *vehicleRepository) scanVehicle(scan func(dest ...interface{}) error) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	err := scan(&v.ID, &v.Reg, &v.Make, &v.Model, &v.DailyRate, &v.WeeklyRate, &v.MonthlyRate, &v.Status,
		&v.MOTDue, &v.TaxDue, &v.InsuranceDue, &v.WarrantyDue, &v.CreatedOn, &v.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	v, err := r.scanVehicle(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vehicle %s: %w", id, domain.ErrNotFound)
	}
	return v, err
}

func (r *vehicleRepository) List(ctx context.Context, status string) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY reg ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := r.scanVehicle(rows.Scan)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

func (r *vehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	query := `UPDATE vehicles SET reg=$1, make=$2, model=$3, daily_rate=$4, weekly_rate=$5, monthly_rate=$6,
	          status=$7, mot_due=$8, tax_due=$9, insurance_due=$10, warranty_due=$11, updated_on=$12 WHERE id=$13`
	_, err := r.db.ExecContext(ctx, query,
		v.Reg, v.Make, v.Model, v.DailyRate, v.WeeklyRate, v.MonthlyRate,
		v.Status, v.MOTDue, v.TaxDue, v.InsuranceDue, v.WarrantyDue, time.Now(), v.ID)
	return err
}

func (r *vehicleRepository) UpdateStatus(ctx context.Context, id string, status domain.VehicleStatus) error {
	query := `UPDATE vehicles SET status=$1, updated_on=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("vehicle %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *vehicleRepository) ListWithDocumentsDueBy(ctx context.Context, cutoff time.Time) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles
	          WHERE status != 'Sold'
	            AND (mot_due <= $1 OR tax_due <= $1 OR insurance_due <= $1 OR warranty_due <= $1)
	          ORDER BY reg ASC`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := r.scanVehicle(rows.Scan)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}
