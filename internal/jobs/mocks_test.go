package jobs

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fleetledger-backend/internal/domain"
)

type MockReminderService struct{ mock.Mock }

func (m *MockReminderService) DeriveReminders(ctx context.Context, asOf time.Time) ([]domain.Reminder, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.Reminder), args.Error(1)
}

func (m *MockReminderService) ListReminders(ctx context.Context, status string, page, pageSize int32) ([]domain.Reminder, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]domain.Reminder), args.Get(1).(int32), args.Error(2)
}

func (m *MockReminderService) ListPending(ctx context.Context, asOf time.Time) ([]domain.Reminder, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.Reminder), args.Error(1)
}

func (m *MockReminderService) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	return m.Called(ctx, id, sentAt).Error(0)
}

type MockEmailService struct{ mock.Mock }

func (m *MockEmailService) SendReminderEmail(ctx context.Context, toEmail, toName string, reminder *domain.Reminder) error {
	return m.Called(ctx, toEmail, toName, reminder).Error(0)
}

func (m *MockEmailService) SendAdminNotification(ctx context.Context, subject, message string) error {
	return m.Called(ctx, subject, message).Error(0)
}

type MockCustomerRepo struct{ mock.Mock }

func (m *MockCustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepo) List(ctx context.Context, status string) ([]domain.Customer, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomerRepo) Update(ctx context.Context, c *domain.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepo) CountActiveRentals(ctx context.Context, customerID string) (int32, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int32), args.Error(1)
}

type MockRentalRepo struct{ mock.Mock }

func (m *MockRentalRepo) Create(ctx context.Context, r *domain.Rental) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRentalRepo) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) Update(ctx context.Context, r *domain.Rental) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRentalRepo) ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Rental, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) ActivateStartedBy(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRentalRepo) DeleteCascade(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
