package postgres

import (
	"database/sql"

	"fleetledger-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.CustomerRepository
	repository.VehicleRepository
	repository.RentalRepository
	repository.ChargeRepository
	repository.PaymentRepository
	repository.LedgerRepository
	repository.ReminderRepository
	repository.InvoiceRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                 db,
		CustomerRepository: NewCustomerRepository(db),
		VehicleRepository:  NewVehicleRepository(db),
		RentalRepository:   NewRentalRepository(db),
		ChargeRepository:   NewChargeRepository(db),
		PaymentRepository:  NewPaymentRepository(db),
		LedgerRepository:   NewLedgerRepository(db),
		ReminderRepository: NewReminderRepository(db),
		InvoiceRepository:  NewInvoiceRepository(db),
	}
}
