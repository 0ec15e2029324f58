package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vorve-checkout-api/apperr"
	"vorve-checkout-api/logger"
	"vorve-checkout-api/models"
	"vorve-checkout-api/services/paddle"
	"vorve-checkout-api/utils"
)

type CheckoutHandler struct {
	settings paddle.OverlaySettings
	log      *zap.Logger
}

func NewCheckoutHandler(settings paddle.OverlaySettings, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{settings: settings, log: log.Named("checkout")}
}

// CreateSession validates the form and returns the options the browser
// hands to the provider overlay. The overlay creates the transaction
// itself, so transactionId is empty here.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("error decoding checkout request", zap.Error(err))
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			utils.SendValidationResponse(w, verr.Fields)
			return
		}
		utils.SendErrorResponse(w, http.StatusBadRequest, "Validation failed")
		return
	}

	if err := h.checkConfigured(); err != nil {
		h.log.Error("checkout unavailable", zap.Error(err))
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Payment system is not configured")
		return
	}

	session := paddle.BuildSession(req, h.settings, uuid.NewString())

	h.log.Info("checkout session prepared",
		zap.String("checkout_id", session.CheckoutID),
		zap.String("email", logger.MaskEmail(req.Email)),
		zap.String("environment", session.Environment),
	)

	utils.SendSuccessResponse(w, models.CheckoutResponse{
		Success:         true,
		CheckoutSession: session,
	})
}

func (h *CheckoutHandler) checkConfigured() error {
	if h.settings.PriceID == "" {
		return &apperr.ConfigurationError{Setting: "PADDLE_PRICE_ID"}
	}
	if h.settings.ClientToken == "" {
		return &apperr.ConfigurationError{Setting: "PADDLE_CLIENT_TOKEN"}
	}
	return nil
}

func (h *CheckoutHandler) Info(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, http.StatusOK, map[string]string{
		"message": "Checkout is handled by the payment overlay. POST customer details to receive overlay options.",
	})
}
