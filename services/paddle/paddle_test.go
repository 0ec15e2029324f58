package paddle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"vorve-checkout-api/apperr"
	"vorve-checkout-api/models"
)

var fixedNow = time.Now().Truncate(time.Second)

func newTestVerifier(secret string) *Verifier {
	return NewVerifier(secret, 5*time.Second).WithClock(func() time.Time { return fixedNow })
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	body := []byte(`{"event_type":"transaction.completed","data":{}}`)
	header := Sign("whsec", fixedNow, body)

	if err := newTestVerifier("whsec").Verify(header, body); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestVerifyRejections(t *testing.T) {
	body := []byte(`{"event_type":"transaction.completed"}`)
	good := Sign("whsec", fixedNow, body)

	tests := []struct {
		name     string
		verifier *Verifier
		header   string
		body     []byte
		want     error
	}{
		{"missing header", newTestVerifier("whsec"), "", body, apperr.ErrMissingSignature},
		{"wrong secret", newTestVerifier("other"), good, body, apperr.ErrInvalidSignature},
		{"tampered body", newTestVerifier("whsec"), good, []byte(`{"event_type":"x"}`), apperr.ErrInvalidSignature},
		{"malformed header", newTestVerifier("whsec"), "garbage", body, apperr.ErrInvalidSignature},
		{"non hex hash", newTestVerifier("whsec"), "ts=1751371200;h1=zzzz", body, apperr.ErrInvalidSignature},
		{"stale timestamp", newTestVerifier("whsec"), Sign("whsec", fixedNow.Add(-time.Minute), body), body, apperr.ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.verifier.Verify(tt.header, tt.body)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestVerifyUnconfiguredSecretFailsClosed(t *testing.T) {
	err := newTestVerifier("").Verify("ts=1;h1=00", []byte("{}"))
	if !apperr.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestVerifyAcceptsRotatedSecret(t *testing.T) {
	body := []byte(`{}`)
	current := Sign("new-secret", fixedNow, body)
	header := current + ";h1=" + "00112233"

	if err := newTestVerifier("new-secret").Verify(header, body); err != nil {
		t.Fatalf("expected one matching h1 to be enough, got %v", err)
	}
}

func TestUnmarshalParsesAfterVerification(t *testing.T) {
	body := []byte(`{"event_id":"evt_1","event_type":"transaction.completed","data":{"id":"txn_1"}}`)
	v := newTestVerifier("whsec")

	event, err := v.Unmarshal(body, Sign("whsec", fixedNow, body))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if event.EventType != models.EventTransactionCompleted || event.EventID != "evt_1" {
		t.Fatalf("unexpected event %+v", event)
	}

	empty := []byte(`{}`)
	if _, err := v.Unmarshal(empty, Sign("whsec", fixedNow, empty)); !errors.Is(err, apperr.ErrMalformedPayload) {
		t.Fatalf("expected missing event_type to be a malformed payload, got %v", err)
	}

	garbage := []byte("not json")
	if _, err := v.Unmarshal(garbage, Sign("whsec", fixedNow, garbage)); !errors.Is(err, apperr.ErrMalformedPayload) {
		t.Fatalf("expected undecodable body to be a malformed payload, got %v", err)
	}
	if _, err := v.Unmarshal(garbage, Sign("other", fixedNow, garbage)); !errors.Is(err, apperr.ErrInvalidSignature) {
		t.Fatalf("signature must be checked before decoding, got %v", err)
	}
}

func TestResolveCustomerExtractorOrder(t *testing.T) {
	tests := []struct {
		name string
		txn  *models.Transaction
		want models.ResolvedCustomer
	}{
		{
			name: "embedded customer wins",
			txn: &models.Transaction{
				Customer:       &models.Customer{Email: "a@example.com", Name: "A"},
				BillingDetails: &models.ContactDetails{Email: "b@example.com"},
			},
			want: models.ResolvedCustomer{Email: "a@example.com", Name: "A"},
		},
		{
			name: "include ignored without customer id",
			txn: &models.Transaction{
				Include: &models.TransactionInclude{Customer: &models.Customer{Email: "inc@example.com"}},
			},
			want: models.ResolvedCustomer{Name: DefaultCustomerName},
		},
		{
			name: "include used when it belongs to the customer id",
			txn: &models.Transaction{
				CustomerID: "ctm_1",
				Include:    &models.TransactionInclude{Customer: &models.Customer{ID: "ctm_1", Email: "inc@example.com", Name: "Inc"}},
			},
			want: models.ResolvedCustomer{Email: "inc@example.com", Name: "Inc"},
		},
		{
			name: "include ignored for another customer",
			txn: &models.Transaction{
				CustomerID: "ctm_1",
				Include:    &models.TransactionInclude{Customer: &models.Customer{ID: "ctm_9", Email: "other@example.com"}},
			},
			want: models.ResolvedCustomer{Name: DefaultCustomerName},
		},
		{
			name: "include without id ignored",
			txn: &models.Transaction{
				CustomerID: "ctm_1",
				Include:    &models.TransactionInclude{Customer: &models.Customer{Email: "inc@example.com"}},
			},
			want: models.ResolvedCustomer{Name: DefaultCustomerName},
		},
		{
			name: "details customer",
			txn: &models.Transaction{
				Details: &models.TransactionDetails{Customer: &models.Customer{Email: "det@example.com"}},
			},
			want: models.ResolvedCustomer{Email: "det@example.com", Name: DefaultCustomerName},
		},
		{
			name: "billing details last",
			txn: &models.Transaction{
				Customer:       &models.Customer{Name: "No Email"},
				BillingDetails: &models.ContactDetails{Email: "bill@example.com", Name: "Bill"},
			},
			want: models.ResolvedCustomer{Email: "bill@example.com", Name: "Bill"},
		},
		{
			name: "nil transaction",
			want: models.ResolvedCustomer{Name: DefaultCustomerName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveCustomer(tt.txn); got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestBuildSession(t *testing.T) {
	req := models.CheckoutRequest{FullName: "Jane Doe", Email: "jane@example.com", Company: "Acme", Requests: "A deck"}
	s := BuildSession(req, OverlaySettings{
		PriceID:      "pri_123",
		Environment:  "sandbox",
		ClientToken:  "test_tok",
		PublicDomain: "https://vorve.tech",
	}, "chk-1")

	if s.PriceID != "pri_123" || s.TransactionID != "" {
		t.Fatalf("unexpected session ids %+v", s)
	}
	if len(s.Overlay.Items) != 1 || s.Overlay.Items[0].Quantity != 1 {
		t.Fatalf("expected single line item, got %+v", s.Overlay.Items)
	}
	if s.Overlay.Settings.SuccessURL != "https://vorve.tech/thank-you?success=true" {
		t.Fatalf("unexpected success url %q", s.Overlay.Settings.SuccessURL)
	}
	if s.Overlay.CustomData["projectDetails"] != "A deck" || s.Overlay.CustomData["checkoutId"] != "chk-1" {
		t.Fatalf("unexpected custom data %v", s.Overlay.CustomData)
	}
	if _, ok := s.Overlay.CustomData["phone"]; ok {
		t.Fatalf("empty phone must not be forwarded")
	}
}

func TestGetCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key_123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/customers/ctm_1":
			w.Write([]byte(`{"data":{"id":"ctm_1","name":"Jane","email":"jane@example.com"},"meta":{"request_id":"r"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"type":"request_error","code":"not_found","detail":"Entity ctm_2 not found"}}`))
		}
	}))
	defer srv.Close()

	client, err := NewClientWithBaseURL("key_123", srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	c, err := client.GetCustomer(context.Background(), "ctm_1")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if c.ID != "ctm_1" || c.Email != "jane@example.com" || c.Name != "Jane" {
		t.Fatalf("unexpected customer %+v", c)
	}

	_, err = client.GetCustomer(context.Background(), "ctm_2")
	var upstream *apperr.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if upstream.Provider != "paddle" || upstream.Err == nil || upstream.Message == "" {
		t.Fatalf("provider error must be wrapped with its cause, got %+v", upstream)
	}
}

func TestLazyClientWithoutKey(t *testing.T) {
	lazy := NewLazyClient("", "sandbox", zap.NewNop())
	if _, err := lazy.GetCustomer(context.Background(), "ctm_1"); !apperr.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := lazy.Get(); !apperr.IsConfiguration(err) {
		t.Fatalf("expected the failure to be sticky, got %v", err)
	}
}

func TestBaseURLFor(t *testing.T) {
	if BaseURLFor("production") != ProductionBaseURL || BaseURLFor("sandbox") != SandboxBaseURL || BaseURLFor("") != SandboxBaseURL {
		t.Fatalf("unexpected base url selection")
	}
}
