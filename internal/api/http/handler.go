package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/service"
)

// Handler exposes the ledger engine over HTTP
type Handler struct {
	rentals   service.RentalService
	payments  service.PaymentService
	ledger    service.LedgerService
	reminders service.ReminderService
	invoices  service.InvoiceService
}

func NewHandler(
	rentals service.RentalService,
	payments service.PaymentService,
	ledger service.LedgerService,
	reminders service.ReminderService,
	invoices service.InvoiceService,
) *Handler {
	return &Handler{
		rentals:   rentals,
		payments:  payments,
		ledger:    ledger,
		reminders: reminders,
		invoices:  invoices,
	}
}

const dateLayout = "2006-01-02"

type createRentalRequest struct {
	CustomerID     string          `json:"customer_id"`
	VehicleID      string          `json:"vehicle_id"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date,omitempty"`
	Cadence        string          `json:"cadence"`
	PeriodicAmount decimal.Decimal `json:"periodic_amount"`
	InitialFee     decimal.Decimal `json:"initial_fee"`
}

type createRentalResponse struct {
	Rental  *domain.Rental  `json:"rental"`
	Invoice *domain.Invoice `json:"invoice,omitempty"`
}

func (h *Handler) CreateRental(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("decode request: %w", domain.ErrInvalidInput))
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		respondError(w, fmt.Errorf("start_date %q: %w", req.StartDate, domain.ErrInvalidInput))
		return
	}
	var end *time.Time
	if req.EndDate != "" {
		e, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			respondError(w, fmt.Errorf("end_date %q: %w", req.EndDate, domain.ErrInvalidInput))
			return
		}
		end = &e
	}

	rental, invoice, err := h.rentals.CreateRental(r.Context(), service.CreateRentalInput{
		CustomerID:     req.CustomerID,
		VehicleID:      req.VehicleID,
		StartDate:      start,
		EndDate:        end,
		Cadence:        domain.BillingCadence(req.Cadence),
		PeriodicAmount: req.PeriodicAmount,
		InitialFee:     req.InitialFee,
	}, time.Now().UTC())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, createRentalResponse{Rental: rental, Invoice: invoice})
}

func (h *Handler) GetRental(w http.ResponseWriter, r *http.Request) {
	rental, err := h.rentals.GetRental(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rental)
}

func (h *Handler) ListRentalCharges(w http.ResponseWriter, r *http.Request) {
	charges, err := h.rentals.ListCharges(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"charges": charges})
}

func (h *Handler) GetRentalLedger(w http.ResponseWriter, r *http.Request) {
	totals, err := h.ledger.GetRentalTotals(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

func (h *Handler) CloseRental(w http.ResponseWriter, r *http.Request) {
	rental, err := h.rentals.CloseRental(r.Context(), mux.Vars(r)["id"], time.Now().UTC())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rental)
}

func (h *Handler) DeleteRental(w http.ResponseWriter, r *http.Request) {
	if err := h.rentals.DeleteRental(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type recordPaymentRequest struct {
	CustomerID  string          `json:"customer_id"`
	RentalID    *string         `json:"rental_id,omitempty"`
	VehicleID   *string         `json:"vehicle_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"`
	Type        string          `json:"type,omitempty"`
	Method      string          `json:"method,omitempty"`
}

type recordPaymentResponse struct {
	Payment     *domain.Payment     `json:"payment"`
	Allocations []domain.Allocation `json:"allocations"`
}

// RecordPayment records the payment and immediately allocates it against
// outstanding charges
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("decode request: %w", domain.ErrInvalidInput))
		return
	}

	paymentDate, err := time.Parse(dateLayout, req.PaymentDate)
	if err != nil {
		respondError(w, fmt.Errorf("payment_date %q: %w", req.PaymentDate, domain.ErrInvalidInput))
		return
	}

	payment, err := h.payments.RecordPayment(r.Context(), service.RecordPaymentInput{
		CustomerID:  req.CustomerID,
		RentalID:    req.RentalID,
		VehicleID:   req.VehicleID,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Type:        domain.PaymentType(req.Type),
		Method:      req.Method,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	allocations, err := h.payments.ApplyPayment(r.Context(), payment.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	payment.Processed = true
	respondJSON(w, http.StatusCreated, recordPaymentResponse{Payment: payment, Allocations: allocations})
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	payment, allocations, err := h.payments.GetPayment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recordPaymentResponse{Payment: payment, Allocations: allocations})
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.payments.DeletePayment(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) GetCustomerNetPosition(w http.ResponseWriter, r *http.Request) {
	totals, err := h.ledger.GetCustomerNetPosition(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := parseInt32(q.Get("page"), 1)
	pageSize := parseInt32(q.Get("page_size"), 20)

	reminders, total, err := h.reminders.ListReminders(r.Context(), q.Get("status"), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reminders": reminders,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoices.GetInvoice(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

func (h *Handler) ListCustomerInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.invoices.ListByCustomer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"invoices": invoices})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseInt32(s string, fallback int32) int32 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil || v < 1 {
		return fallback
	}
	return int32(v)
}
