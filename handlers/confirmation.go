package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"vorve-checkout-api/apperr"
	"vorve-checkout-api/logger"
	"vorve-checkout-api/models"
	"vorve-checkout-api/services/fulfillment"
	"vorve-checkout-api/utils"
)

type ConfirmationHandler struct {
	notifier fulfillment.Notifier
	log      *zap.Logger
}

func NewConfirmationHandler(notifier fulfillment.Notifier, log *zap.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{notifier: notifier, log: log.Named("confirmation")}
}

// Send re-sends an order confirmation on request, e.g. from the thank-you page.
func (h *ConfirmationHandler) Send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	var req models.ConfirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	if req.Email == "" || req.Name == "" {
		utils.SendJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Email and name are required"})
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

	sent, err := h.notifier.Send(r.Context(), models.NotificationJob{
		Kind:      models.NotificationConfirmation,
		Recipient: req.Email,
		TemplateData: models.TemplateData{
			CustomerName:  req.Name,
			CustomerEmail: req.Email,
			TransactionID: req.TransactionID,
		},
	})
	if err != nil {
		h.log.Error("confirmation email failed", zap.String("to", logger.MaskEmail(req.Email)), zap.Error(err))
		utils.SendJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to send email"})
		return
	}

	utils.SendSuccessResponse(w, map[string]interface{}{
		"success": true,
		"message": "Confirmation email sent",
		"emailId": sent.MessageID,
	})
}
