package models

// APIResponse is the envelope used by the form endpoints.
type APIResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
	ID      string              `json:"id,omitempty"`
}

type CheckoutResponse struct {
	Success bool `json:"success"`
	CheckoutSession
}

type WebhookResponse struct {
	Success   bool   `json:"success"`
	EventType string `json:"eventType"`
	Message   string `json:"message"`
}

// ErrorResponse is the bare {error} shape used by the webhook endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
