package utils

import (
	"encoding/json"
	"net/http"

	"vorve-checkout-api/models"
)

func SendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func SendErrorResponse(w http.ResponseWriter, status int, message string) {
	SendJSON(w, status, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

func SendValidationResponse(w http.ResponseWriter, details map[string][]string) {
	SendJSON(w, http.StatusBadRequest, models.APIResponse{
		Success: false,
		Error:   "Validation failed",
		Details: details,
	})
}

func SendSuccessResponse(w http.ResponseWriter, response interface{}) {
	SendJSON(w, http.StatusOK, response)
}
