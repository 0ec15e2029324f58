package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"vorve-checkout-api/apperr"
	"vorve-checkout-api/models"
)

type recordingMailer struct {
	messages []Message
	err      error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) (string, error) {
	m.messages = append(m.messages, msg)
	if m.err != nil {
		return "", m.err
	}
	return "msg_" + string(rune('0'+len(m.messages))), nil
}

func newTestSender(m Mailer) (*Sender, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return NewSender(m, SenderConfig{Domain: "vorve.tech", BrandName: "Vorve.tech"}, zap.New(core)), logs
}

func TestSenderConfirmation(t *testing.T) {
	m := &recordingMailer{}
	s, logs := newTestSender(m)

	sent, err := s.Send(context.Background(), models.NotificationJob{
		Kind:         models.NotificationConfirmation,
		Recipient:    "jane@example.com",
		TemplateData: models.TemplateData{CustomerName: "Jane Doe", TransactionID: "txn_1"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.MessageID != "msg_1" {
		t.Fatalf("unexpected message id %q", sent.MessageID)
	}
	if len(m.messages) != 1 {
		t.Fatalf("expected exactly one provider call, got %d", len(m.messages))
	}
	msg := m.messages[0]
	if !strings.Contains(msg.Subject, "Thank you") {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.From, "no-reply@vorve.tech") {
		t.Fatalf("customer mail must come from no-reply, got %q", msg.From)
	}
	if !strings.Contains(msg.HTML, "Jane Doe") {
		t.Fatalf("expected customer name in body")
	}

	entries := logs.FilterMessage("email sent").All()
	if len(entries) != 1 || entries[0].ContextMap()["message_id"] != "msg_1" {
		t.Fatalf("expected message id to be logged, got %+v", entries)
	}
	if entries[0].ContextMap()["to"] != "j***@example.com" {
		t.Fatalf("recipient must be masked in logs, got %v", entries[0].ContextMap()["to"])
	}
}

func TestSenderInternalSaleSubjectAndFrom(t *testing.T) {
	m := &recordingMailer{}
	s, _ := newTestSender(m)

	_, err := s.Send(context.Background(), models.NotificationJob{
		Kind:      models.NotificationInternalSale,
		Recipient: "sales@vorve.tech",
		TemplateData: models.TemplateData{
			Amount:        "2997.00",
			Currency:      "USD",
			TransactionID: "txn_1",
			CustomerName:  "Jane",
		},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	msg := m.messages[0]
	if msg.Subject != "New Payment Received - $2997.00" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.From, "notifications@vorve.tech") {
		t.Fatalf("internal alerts must come from notifications@, got %q", msg.From)
	}
}

func TestSenderEscapesCustomerText(t *testing.T) {
	m := &recordingMailer{}
	s, _ := newTestSender(m)

	_, err := s.Send(context.Background(), models.NotificationJob{
		Kind:      models.NotificationInternalSale,
		Recipient: "sales@vorve.tech",
		TemplateData: models.TemplateData{
			CustomerName: `<img src=x onerror=alert(1)>`,
			Requests:     `<script>alert("x")</script>`,
			Amount:       "1.00",
		},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	html := m.messages[0].HTML
	if strings.Contains(html, "<script>") || strings.Contains(html, "<img src=x") {
		t.Fatalf("customer text must be escaped, got %s", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Fatalf("expected escaped script tag in body")
	}
}

func TestSenderFailureIsReturnedNotPanicked(t *testing.T) {
	m := &recordingMailer{err: &apperr.UpstreamError{Provider: "resend", Status: 500, Code: "internal_server_error", Message: "down"}}
	s, _ := newTestSender(m)

	_, err := s.Send(context.Background(), models.NotificationJob{Kind: models.NotificationPaymentFailed, Recipient: "jane@example.com"})
	var nerr *apperr.NotificationError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected notification error, got %v", err)
	}
	var upstream *apperr.UpstreamError
	if !errors.As(err, &upstream) || upstream.Code != "internal_server_error" {
		t.Fatalf("expected upstream cause to be preserved, got %v", err)
	}
	if len(m.messages) != 1 {
		t.Fatalf("expected exactly one attempt, got %d", len(m.messages))
	}
}

func TestSenderRejectsEmptyRecipientWithoutCall(t *testing.T) {
	m := &recordingMailer{}
	s, _ := newTestSender(m)

	if _, err := s.Send(context.Background(), models.NotificationJob{Kind: models.NotificationConfirmation}); err == nil {
		t.Fatalf("expected error for empty recipient")
	}
	if len(m.messages) != 0 {
		t.Fatalf("no provider call expected")
	}
}

func TestRenderUnknownKind(t *testing.T) {
	if _, _, err := Render("bogus", "Brand", "$", models.TemplateData{}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestClientSend(t *testing.T) {
	var got resend.SendEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" || r.Header.Get("Authorization") != "Bearer re_123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		switch got.To[0] {
		case "bad@example.com":
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`))
			return
		case "busy@example.com":
			w.Header().Set("retry-after", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"statusCode":429,"name":"rate_limit_exceeded","message":"Too many requests"}`))
			return
		}
		w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer srv.Close()

	client, err := NewClientWithBaseURL("re_123", srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	id, err := client.Send(context.Background(), Message{From: "a@vorve.tech", To: []string{"jane@example.com"}, Subject: "hi", HTML: "<p>hi</p>", ReplyTo: "jane@example.com"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "49a3999c-0ce1-4ea6-ab68-afcd6dc2e794" || got.Subject != "hi" || got.Html != "<p>hi</p>" || got.ReplyTo != "jane@example.com" {
		t.Fatalf("unexpected result id=%q msg=%+v", id, got)
	}

	_, err = client.Send(context.Background(), Message{To: []string{"bad@example.com"}})
	var upstream *apperr.UpstreamError
	if !errors.As(err, &upstream) || upstream.Provider != "resend" || upstream.Message != "Invalid to field" {
		t.Fatalf("expected provider message to be kept, got %v", err)
	}

	_, err = client.Send(context.Background(), Message{To: []string{"busy@example.com"}})
	if !errors.As(err, &upstream) || upstream.Status != http.StatusTooManyRequests || upstream.Code != "rate_limit_exceeded" {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if !errors.Is(err, resend.ErrRateLimit) {
		t.Fatalf("the sdk error must stay reachable, got %v", err)
	}
}

func TestLazyClientWithoutKey(t *testing.T) {
	lazy := NewLazyClient("", zap.NewNop())
	if lazy.Configured() {
		t.Fatalf("expected unconfigured client")
	}
	if _, err := lazy.Send(context.Background(), Message{}); !apperr.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
