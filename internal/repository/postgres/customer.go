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

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	c.ID = uuid.NewString()
	now := time.Now()
	query := `INSERT INTO customers (id, name, type, email, phone, address, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Type, c.Email, c.Phone, c.Address, c.Status, now, now)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	c.CreatedOn = now
	c.UpdatedOn = now
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	c := &domain.Customer{}
	query := `SELECT id, name, type, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''), status, created_on, updated_on
	          FROM customers WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Type, &c.Email, &c.Phone, &c.Address, &c.Status, &c.CreatedOn, &c.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) List(ctx context.Context, status string) ([]domain.Customer, error) {
	query := `SELECT id, name, type, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''), status, created_on, updated_on
	          FROM customers`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Email, &c.Phone, &c.Address, &c.Status, &c.CreatedOn, &c.UpdatedOn); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	query := `UPDATE customers SET name=$1, type=$2, email=$3, phone=$4, address=$5, status=$6, updated_on=$7 WHERE id=$8`
	_, err := r.db.ExecContext(ctx, query, c.Name, c.Type, c.Email, c.Phone, c.Address, c.Status, time.Now(), c.ID)
	return err
}

func (r *customerRepository) CountActiveRentals(ctx context.Context, customerID string) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM rentals WHERE customer_id = $1 AND status IN ('Upcoming', 'Active')`
	err := r.db.QueryRowContext(ctx, query, customerID).Scan(&count)
	return count, err
}
