package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ChargeStatus string

const (
	ChargeStatusOpen          ChargeStatus = "Open"
	ChargeStatusPartiallyPaid ChargeStatus = "PartiallyPaid"
	ChargeStatusPaid          ChargeStatus = "Paid"
	ChargeStatusOverdue       ChargeStatus = "Overdue"
)

// Charge is one billing period's obligation on a rental. Amount never changes
// after creation; only Status and AmountOutstanding are maintained by the
// payment allocator. (rental_id, due_date) is unique.
type Charge struct {
	ID                string          `json:"id"`
	RentalID          string          `json:"rental_id"`
	DueDate           time.Time       `json:"due_date"`
	Amount            decimal.Decimal `json:"amount"`
	AmountOutstanding decimal.Decimal `json:"amount_outstanding"`
	Status            ChargeStatus    `json:"status"`
	CreatedOn         time.Time       `json:"created_on"`
}

// Outstanding reports whether the charge still accepts allocations.
func (c *Charge) Outstanding() bool {
	switch c.Status {
	case ChargeStatusOpen, ChargeStatusPartiallyPaid, ChargeStatusOverdue:
		return c.AmountOutstanding.IsPositive()
	}
	return false
}
