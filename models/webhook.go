package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type EventType string

const (
	EventTransactionCompleted     EventType = "transaction.completed"
	EventTransactionPaymentFailed EventType = "transaction.payment_failed"
	EventSubscriptionCreated      EventType = "subscription.created"
	EventCustomerCreated          EventType = "customer.created"
)

// WebhookEvent is the provider's notification envelope. Data stays raw until
// the dispatcher knows which record shape to expect.
type WebhookEvent struct {
	EventID        string          `json:"event_id"`
	EventType      EventType       `json:"event_type"`
	OccurredAt     string          `json:"occurred_at"`
	NotificationID string          `json:"notification_id"`
	Data           json.RawMessage `json:"data"`
}

// Transaction covers the payload shapes seen for transaction events. The
// customer can arrive embedded, under include, under details, or not at all.
type Transaction struct {
	ID             string              `json:"id"`
	Status         string              `json:"status"`
	CustomerID     string              `json:"customer_id"`
	CurrencyCode   string              `json:"currency_code"`
	CreatedAt      string              `json:"created_at"`
	BilledAt       string              `json:"billed_at"`
	CustomData     map[string]any      `json:"custom_data"`
	Customer       *Customer           `json:"customer"`
	Include        *TransactionInclude `json:"include"`
	Details        *TransactionDetails `json:"details"`
	BillingDetails *ContactDetails     `json:"billing_details"`
}

type TransactionInclude struct {
	Customer *Customer `json:"customer"`
}

type TransactionDetails struct {
	Totals   *Totals   `json:"totals"`
	Customer *Customer `json:"customer"`
}

type Totals struct {
	Subtotal MinorUnits `json:"subtotal"`
	Tax      MinorUnits `json:"tax"`
	Total    MinorUnits `json:"total"`
}

type Customer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

type ContactDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ResolvedCustomer is the normalized contact for a transaction. Empty fields
// mean the value could not be found in any known location.
type ResolvedCustomer struct {
	Email string
	Name  string
}

func (c ResolvedCustomer) HasEmail() bool {
	return c.Email != ""
}

// MinorUnits is an amount in the currency's smallest unit. The provider sends
// it as a decimal string; older payloads used a bare number.
type MinorUnits int64

func (m *MinorUnits) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		if raw == "" {
			*m = 0
			return nil
		}
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*m = MinorUnits(v)
		return nil
	}
	// Decimal forms ("2997.00", 2997.5) are still minor units; round to the nearest unit.
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid minor unit amount %q", raw)
	}
	*m = MinorUnits(math.Round(f))
	return nil
}
