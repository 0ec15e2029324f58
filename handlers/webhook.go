package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"vorve-checkout-api/apperr"
	"vorve-checkout-api/models"
	"vorve-checkout-api/services/fulfillment"
	"vorve-checkout-api/services/paddle"
	"vorve-checkout-api/utils"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	verifier   *paddle.Verifier
	dispatcher *fulfillment.Dispatcher
	log        *zap.Logger
}

func NewWebhookHandler(verifier *paddle.Verifier, dispatcher *fulfillment.Dispatcher, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, dispatcher: dispatcher, log: log.Named("webhook")}
}

// HandlePaymentWebhook verifies the signature over the raw body before
// anything is parsed. Once verified the delivery is always acknowledged
// with 200, whatever the notification step does, so the provider does not
// retry and compound duplicate emails.
func (h *WebhookHandler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.log.Error("failed to read webhook body", zap.Error(err))
		utils.SendJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	header := r.Header.Get(paddle.SignatureHeader)
	event, err := h.verifier.Unmarshal(body, header)
	if errors.Is(err, apperr.ErrMalformedPayload) {
		// Verified bytes will not decode any better on redelivery, so the
		// provider still gets its 200.
		h.log.Error("verified webhook payload could not be decoded", zap.Int("bytes", len(body)), zap.Error(err))
		utils.SendJSON(w, http.StatusOK, models.WebhookResponse{
			Success: true,
			Message: "Webhook received, payload not processed",
		})
		return
	}
	if err != nil {
		h.reject(w, err)
		return
	}

	h.log.Info("webhook verified",
		zap.String("event_id", event.EventID),
		zap.String("event_type", string(event.EventType)),
	)

	outcome := h.dispatcher.Dispatch(r.Context(), event)

	utils.SendJSON(w, http.StatusOK, models.WebhookResponse{
		Success:   true,
		EventType: string(outcome.EventType),
		Message:   "Webhook processed",
	})
}

func (h *WebhookHandler) reject(w http.ResponseWriter, err error) {
	var cfgErr *apperr.ConfigurationError
	switch {
	case errors.Is(err, apperr.ErrMissingSignature):
		h.log.Warn("webhook rejected: missing signature header")
		utils.SendJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "No signature"})
	case errors.As(err, &cfgErr):
		h.log.Error("webhook rejected: secret not configured", zap.String("setting", cfgErr.Setting))
		utils.SendJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Webhook secret not configured"})
	default:
		h.log.Warn("webhook rejected: invalid signature", zap.Error(err))
		utils.SendJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid signature"})
	}
}

// Status lets operators check that the endpoint is reachable and configured.
func (h *WebhookHandler) Status(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, http.StatusOK, map[string]interface{}{
		"message":                 "Webhook endpoint is active",
		"timestamp":               time.Now().UTC().Format(time.RFC3339),
		"webhookSecretConfigured": h.verifier.Configured(),
	})
}
