package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"vorve-checkout-api/apperr"
	"vorve-checkout-api/logger"
	"vorve-checkout-api/models"
	"vorve-checkout-api/services/fulfillment"
	"vorve-checkout-api/utils"
)

type ContactConfig struct {
	Inbox     string
	HasAPIKey bool
}

type ContactHandler struct {
	notifier fulfillment.Notifier
	cfg      ContactConfig
	log      *zap.Logger
}

func NewContactHandler(notifier fulfillment.Notifier, cfg ContactConfig, log *zap.Logger) *ContactHandler {
	return &ContactHandler{notifier: notifier, cfg: cfg, log: log.Named("contact")}
}

// Submit forwards a contact form to the inbox with reply-to set to the sender.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	var req models.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)

	if err := utils.ValidateStruct(req); err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			utils.SendValidationResponse(w, verr.Fields)
			return
		}
		utils.SendErrorResponse(w, http.StatusBadRequest, "Validation failed")
		return
	}

	if h.cfg.Inbox == "" {
		h.log.Error("contact inbox not configured", zap.Error(&apperr.ConfigurationError{Setting: "CONTACT_EMAIL"}))
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Email service not configured")
		return
	}

	sent, err := h.notifier.Send(r.Context(), models.NotificationJob{
		Kind:      models.NotificationContact,
		Recipient: h.cfg.Inbox,
		ReplyTo:   req.Email,
		TemplateData: models.TemplateData{
			CustomerName:  req.Name,
			CustomerEmail: req.Email,
			Message:       req.Message,
		},
	})
	if err != nil {
		h.log.Error("contact email failed", zap.String("from", logger.MaskEmail(req.Email)), zap.Error(err))
		if apperr.IsConfiguration(err) {
			utils.SendErrorResponse(w, http.StatusInternalServerError, "Email service not configured")
			return
		}
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to send email")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Success: true,
		Message: "Message sent successfully",
		ID:      sent.MessageID,
	})
}

// Diagnostics reports whether the mail provider is configured without
// revealing the key.
func (h *ContactHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Contact API is working",
		"hasApiKey": h.cfg.HasAPIKey,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
