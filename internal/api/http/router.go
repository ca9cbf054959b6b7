package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"fleetledger-backend/internal/security"
)

// NewRouter wires every API route. Everything under /api/v1 requires a valid
// bearer token; /health does not.
func NewRouter(handler *Handler, tokens security.TokenManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware)

	router.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tokens))

	api.HandleFunc("/rentals", handler.CreateRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}", handler.GetRental).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}", handler.DeleteRental).Methods(http.MethodDelete)
	api.HandleFunc("/rentals/{id}/charges", handler.ListRentalCharges).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}/ledger", handler.GetRentalLedger).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}/close", handler.CloseRental).Methods(http.MethodPost)

	api.HandleFunc("/payments", handler.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id}", handler.GetPayment).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id}", handler.DeletePayment).Methods(http.MethodDelete)

	api.HandleFunc("/customers/{id}/net-position", handler.GetCustomerNetPosition).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}/invoices", handler.ListCustomerInvoices).Methods(http.MethodGet)

	api.HandleFunc("/reminders", handler.ListReminders).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}", handler.GetInvoice).Methods(http.MethodGet)

	return router
}
