package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// maxFormBody caps the JSON bodies of the browser-facing forms.
const maxFormBody = 64 << 10

type Routes struct {
	Webhook      *WebhookHandler
	Checkout     *CheckoutHandler
	Contact      *ContactHandler
	Confirmation *ConfirmationHandler
	Health       *HealthHandler

	// Limit guards the form endpoints. Nil means no rate limiting.
	Limit func(http.Handler) http.Handler
}

// NewRouter registers every endpoint on a fresh router with mw applied in order.
func NewRouter(rt Routes, mw ...mux.MiddlewareFunc) *mux.Router {
	router := mux.NewRouter()
	for _, m := range mw {
		router.Use(m)
	}

	limit := rt.Limit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	router.HandleFunc("/webhooks/payment", rt.Webhook.HandlePaymentWebhook).Methods("POST")
	router.HandleFunc("/webhooks/payment", rt.Webhook.Status).Methods("GET")

	router.Handle("/checkout", limit(http.HandlerFunc(rt.Checkout.CreateSession))).Methods("POST", "OPTIONS")
	router.HandleFunc("/checkout", rt.Checkout.Info).Methods("GET")

	router.Handle("/contact", limit(http.HandlerFunc(rt.Contact.Submit))).Methods("POST", "OPTIONS")
	router.HandleFunc("/contact/test", rt.Contact.Diagnostics).Methods("GET")

	router.Handle("/send-confirmation", limit(http.HandlerFunc(rt.Confirmation.Send))).Methods("POST", "OPTIONS")

	router.HandleFunc("/health", rt.Health.Check).Methods("GET")

	return router
}
