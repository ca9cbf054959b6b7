package jobs

import (
	"context"
	"time"

	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/logger"
)

// GenerateReminders runs the reminder deriver over outstanding charges and
// vehicle document expiries
func (jr *JobRunner) GenerateReminders() {
	jr.runWithRecovery("GenerateReminders", func() {
		ctx := context.Background()

		created, err := jr.services.Reminder.DeriveReminders(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to derive reminders", "error", err)
			return
		}

		logger.Info("Reminder derivation completed", "reminders_created", len(created))
	})
}

// DispatchReminderEmails emails every pending reminder whose remind-on date
// has arrived, marking each sent on success. Vehicle document reminders go to
// the admin inbox; charge and rental reminders go to the customer.
func (jr *JobRunner) DispatchReminderEmails() {
	jr.runWithRecovery("DispatchReminderEmails", func() {
		ctx := context.Background()
		now := time.Now().UTC()

		pending, err := jr.services.Reminder.ListPending(ctx, now)
		if err != nil {
			logger.Error("Failed to list pending reminders", "error", err)
			return
		}

		sent, skipped := 0, 0
		for i := range pending {
			rem := &pending[i]
			toEmail, toName, ok := jr.reminderRecipient(ctx, rem)
			if !ok {
				skipped++
				continue
			}
			if err := jr.services.Email.SendReminderEmail(ctx, toEmail, toName, rem); err != nil {
				logger.Error("Failed to send reminder email",
					"reminder_id", rem.ID,
					"rule_code", rem.RuleCode,
					"error", err)
				continue
			}
			if err := jr.services.Reminder.MarkSent(ctx, rem.ID, now); err != nil {
				logger.Error("Failed to mark reminder sent",
					"reminder_id", rem.ID,
					"error", err)
				continue
			}
			sent++
		}

		logger.Info("Reminder dispatch completed",
			"pending", len(pending),
			"sent", sent,
			"skipped", skipped)
	})
}

// reminderRecipient resolves who a reminder is addressed to. Vehicle document
// reminders are internal and return empty email/name, which the email service
// routes to the admin inbox. Charge and rental reminders resolve the customer
// recorded in the reminder context (falling back to the rental's customer);
// a customer without an email address is skipped, not misrouted to the admin.
func (jr *JobRunner) reminderRecipient(ctx context.Context, rem *domain.Reminder) (toEmail, toName string, ok bool) {
	if rem.ObjectType == domain.ReminderObjectVehicle {
		return "", "", true
	}

	customerID := rem.Context["customer_id"]
	if customerID == "" && rem.ObjectType == domain.ReminderObjectRental {
		rental, err := jr.store.RentalRepository.GetByID(ctx, rem.ObjectID)
		if err != nil {
			logger.Error("Failed to resolve rental for reminder",
				"reminder_id", rem.ID, "rental_id", rem.ObjectID, "error", err)
			return "", "", false
		}
		customerID = rental.CustomerID
	}
	if customerID == "" {
		logger.Warn("Cannot determine reminder recipient, skipping",
			"reminder_id", rem.ID, "rule_code", rem.RuleCode)
		return "", "", false
	}

	customer, err := jr.store.CustomerRepository.GetByID(ctx, customerID)
	if err != nil {
		logger.Error("Failed to resolve reminder recipient",
			"reminder_id", rem.ID, "customer_id", customerID, "error", err)
		return "", "", false
	}
	if customer.Email == "" {
		logger.Warn("Customer has no email address, skipping reminder",
			"reminder_id", rem.ID, "customer_id", customerID)
		return "", "", false
	}
	return customer.Email, customer.Name, true
}
