package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/repository"
)

type invoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) repository.InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `id, invoice_number, rental_id, customer_id, vehicle_id, issue_date, due_date,
	       customer_name, COALESCE(customer_email, ''), COALESCE(customer_address, ''),
	       COALESCE(vehicle_reg, ''), COALESCE(vehicle_make, ''), COALESCE(vehicle_model, ''),
	       line_items, subtotal, tax_rate, tax_amount, total_amount, status, COALESCE(notes, ''), created_on, updated_on`

func (r *invoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	inv.ID = uuid.NewString()
	now := time.Now()

	lineItems, err := json.Marshal(inv.LineItems)
	if err != nil {
		return fmt.Errorf("marshal invoice line items: %w", err)
	}

	query := `INSERT INTO invoices (id, invoice_number, rental_id, customer_id, vehicle_id, issue_date, due_date,
	          customer_name, customer_email, customer_address, vehicle_reg, vehicle_make, vehicle_model,
	          line_items, subtotal, tax_rate, tax_amount, total_amount, status, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err = r.db.ExecContext(ctx, query,
		inv.ID, inv.InvoiceNumber, inv.RentalID, inv.CustomerID, inv.VehicleID, inv.IssueDate, inv.DueDate,
		inv.CustomerName, inv.CustomerEmail, inv.CustomerAddress, inv.VehicleReg, inv.VehicleMake, inv.VehicleModel,
		lineItems, inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.TotalAmount, inv.Status, inv.Notes, now, now)
	if err != nil {
		// invoice_number carries a unique index; two writers minting the same
		// per-month sequence lose the race here, not at read time.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("invoice number %s already taken: %w", inv.InvoiceNumber, domain.ErrConcurrentModification)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	inv.CreatedOn = now
	inv.UpdatedOn = now
	return nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
	}
	return inv, err
}

func (r *invoiceRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE customer_id = $1 ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// NextSequence returns the next per-month invoice number for numbers shaped
// INV-YYYYMM-XXXX.
func (r *invoiceRepository) NextSequence(ctx context.Context, yearMonth string) (int32, error) {
	var next int32
	query := `SELECT COALESCE(MAX(CAST(SPLIT_PART(invoice_number, '-', 3) AS INTEGER)), 0) + 1
	          FROM invoices WHERE invoice_number LIKE $1`
	err := r.db.QueryRowContext(ctx, query, "INV-"+yearMonth+"-%").Scan(&next)
	return next, err
}

func scanInvoice(scan func(dest ...interface{}) error) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	var lineItems []byte
	err := scan(&inv.ID, &inv.InvoiceNumber, &inv.RentalID, &inv.CustomerID, &inv.VehicleID, &inv.IssueDate, &inv.DueDate,
		&inv.CustomerName, &inv.CustomerEmail, &inv.CustomerAddress, &inv.VehicleReg, &inv.VehicleMake, &inv.VehicleModel,
		&lineItems, &inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.TotalAmount, &inv.Status, &inv.Notes, &inv.CreatedOn, &inv.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if len(lineItems) > 0 {
		if err := json.Unmarshal(lineItems, &inv.LineItems); err != nil {
			return nil, fmt.Errorf("unmarshal invoice line items: %w", err)
		}
	}
	return inv, nil
}
