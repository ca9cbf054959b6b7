package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetledger-backend/internal/domain"
)

func TestInvoiceRepository_Create(t *testing.T) {
	ctx := context.Background()
	invoice := func() *domain.Invoice {
		return &domain.Invoice{
			InvoiceNumber: "INV-202403-0007",
			CustomerID:    "cust-1",
			CustomerName:  "Acme Couriers",
			IssueDate:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			DueDate:       time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			Status:        domain.InvoiceStatusIssued,
		}
	}

	t.Run("Inserts the invoice", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewInvoiceRepository(db)

		mock.ExpectExec(`INSERT INTO invoices`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, invoice()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate invoice number surfaces as concurrent modification", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewInvoiceRepository(db)

		mock.ExpectExec(`INSERT INTO invoices`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "invoices_invoice_number_key"})

		assert.ErrorIs(t, repo.Create(ctx, invoice()), domain.ErrConcurrentModification)
	})
}

func TestInvoiceRepository_NextSequence(t *testing.T) {
	ctx := context.Background()

	t.Run("Continues the month's sequence", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewInvoiceRepository(db)

		mock.ExpectQuery(`SELECT COALESCE\(MAX\(CAST\(SPLIT_PART`).
			WithArgs("INV-202403-%").
			WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(8))

		next, err := repo.NextSequence(ctx, "202403")
		assert.NoError(t, err)
		assert.Equal(t, int32(8), next)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Starts a fresh month at one", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewInvoiceRepository(db)

		mock.ExpectQuery(`SELECT COALESCE\(MAX\(CAST\(SPLIT_PART`).
			WithArgs("INV-202404-%").
			WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(1))

		next, err := repo.NextSequence(ctx, "202404")
		assert.NoError(t, err)
		assert.Equal(t, int32(1), next)
	})
}
