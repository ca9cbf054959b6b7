package domain

import "time"

type ReminderSeverity string

const (
	SeverityInfo     ReminderSeverity = "info"
	SeverityWarning  ReminderSeverity = "warning"
	SeverityCritical ReminderSeverity = "critical"
)

type ReminderStatus string

const (
	ReminderStatusPending ReminderStatus = "pending"
	ReminderStatusSent    ReminderStatus = "sent"
)

type ReminderObjectType string

const (
	ReminderObjectCharge  ReminderObjectType = "Charge"
	ReminderObjectVehicle ReminderObjectType = "Vehicle"
	ReminderObjectRental  ReminderObjectType = "Rental"
)

// Reminder is a derived projection over ledger and vehicle state, not a
// source of truth. The deriver never creates a second unsent reminder for the
// same (object_type, object_id, rule_code, due_on).
type Reminder struct {
	ID         string             `json:"id"`
	RuleCode   string             `json:"rule_code"`
	ObjectType ReminderObjectType `json:"object_type"`
	ObjectID   string             `json:"object_id"`
	Title      string             `json:"title"`
	Message    string             `json:"message"`
	DueOn      time.Time          `json:"due_on"`
	RemindOn   time.Time          `json:"remind_on"`
	Severity   ReminderSeverity   `json:"severity"`
	Status     ReminderStatus     `json:"status"`
	LastSentAt *time.Time         `json:"last_sent_at,omitempty"`
	Context    map[string]string  `json:"context,omitempty"`
	CreatedOn  time.Time          `json:"created_on"`
}
