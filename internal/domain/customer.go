package domain

import "time"

type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "Individual"
	CustomerTypeCompany    CustomerType = "Company"
)

type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "Active"
	CustomerStatusInactive CustomerStatus = "Inactive"
)

type Customer struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      CustomerType   `json:"type"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Address   string         `json:"address"`
	Status    CustomerStatus `json:"status"`
	CreatedOn time.Time      `json:"created_on"`
	UpdatedOn time.Time      `json:"updated_on"`
}
